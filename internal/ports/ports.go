package ports

import (
	"context"
	"time"

	"DraftReviewer/internal/domain"
)

// PageRepository reads and writes raw page text on the wiki.
type PageRepository interface {
	GetPage(ctx context.Context, title string) (domain.PageContent, error)
	SavePage(ctx context.Context, req domain.EditRequest) (domain.EditResult, error)
	DeletePage(ctx context.Context, title, reason string) error
}

// CategoryLister enumerates page titles filed under a category.
type CategoryLister interface {
	CategoryMembers(ctx context.Context, category string, limit int) ([]string, error)
}

// TitleSource yields the drafts a sweep should inspect.
type TitleSource interface {
	Titles(ctx context.Context) ([]string, error)
}

// ReviewLedger persists sweep results and reviewer actions for deduplication/history.
type ReviewLedger interface {
	AlreadyFlagged(ctx context.Context, titles []string) (map[string]bool, error)
	SaveFlagged(ctx context.Context, draft domain.StaleDraft) error
	RecordAction(ctx context.Context, action domain.ReviewAction) error
}

// Notifier streams sweep digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when sweeps execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
