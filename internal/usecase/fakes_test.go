package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"DraftReviewer/internal/domain"
)

type memoryWiki struct {
	mu      sync.Mutex
	pages   map[string]domain.PageContent
	failing map[string]error
	saveErr error
	saved   []domain.EditRequest
	deleted []string
}

func newMemoryWiki() *memoryWiki {
	return &memoryWiki{pages: map[string]domain.PageContent{}, failing: map[string]error{}}
}

func (w *memoryWiki) put(title, text string, modified time.Time) {
	w.pages[title] = domain.PageContent{Title: title, Text: text, Timestamp: modified}
}

func (w *memoryWiki) GetPage(ctx context.Context, title string) (domain.PageContent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failing[title]; err != nil {
		return domain.PageContent{}, err
	}
	content, ok := w.pages[title]
	if !ok {
		return domain.PageContent{}, errors.New("missing page")
	}
	return content, nil
}

func (w *memoryWiki) SavePage(ctx context.Context, req domain.EditRequest) (domain.EditResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.saveErr != nil {
		return domain.EditResult{}, w.saveErr
	}
	w.saved = append(w.saved, req)
	return domain.EditResult{Success: true, NewRevID: int64(100 + len(w.saved))}, nil
}

func (w *memoryWiki) DeletePage(ctx context.Context, title, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deleted = append(w.deleted, title)
	return nil
}

type memoryLedger struct {
	flagged map[string]bool
	saved   []domain.StaleDraft
	actions []domain.ReviewAction
}

func (l *memoryLedger) AlreadyFlagged(ctx context.Context, titles []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, title := range titles {
		if l.flagged[title] {
			out[title] = true
		}
	}
	return out, nil
}

func (l *memoryLedger) SaveFlagged(ctx context.Context, draft domain.StaleDraft) error {
	l.saved = append(l.saved, draft)
	return nil
}

func (l *memoryLedger) RecordAction(ctx context.Context, action domain.ReviewAction) error {
	l.actions = append(l.actions, action)
	return nil
}

type staticTitles []string

func (s staticTitles) Titles(ctx context.Context) ([]string, error) {
	return s, nil
}

type recordingNotifier struct {
	digests []string
}

func (n *recordingNotifier) PublishDigest(ctx context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}
