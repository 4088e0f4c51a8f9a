package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/page"
	"DraftReviewer/internal/ports"
	"DraftReviewer/internal/submission"
)

// SweeperDeps wires the adapters used by the stale-draft sweep.
type SweeperDeps struct {
	Source       ports.TitleSource
	Repository   ports.PageRepository
	Ledger       ports.ReviewLedger
	Notifier     ports.Notifier
	TemplateName string
	StaleMonths  int
	Logger       *slog.Logger
}

// Sweeper finds unsubmitted drafts that have not been edited for a while.
type Sweeper struct {
	source   ports.TitleSource
	repo     ports.PageRepository
	ledger   ports.ReviewLedger
	notifier ports.Notifier
	parser   *submission.Parser
	months   int
	logger   *slog.Logger
}

// SweepReport summarises one sweep run.
type SweepReport struct {
	RunID   string
	Checked int
	Skipped int
	Failed  int
	Flagged []domain.StaleDraft
}

// NewSweeper constructs the sweep use case.
func NewSweeper(deps SweeperDeps) *Sweeper {
	return &Sweeper{
		source:   deps.Source,
		repo:     deps.Repository,
		ledger:   deps.Ledger,
		notifier: deps.Notifier,
		parser:   submission.NewParser(deps.TemplateName),
		months:   deps.StaleMonths,
		logger:   deps.Logger,
	}
}

// Run inspects every title from the source as of now. A failure on a single
// draft is logged and counted; source and ledger lookups abort the run.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (SweepReport, error) {
	report := SweepReport{RunID: uuid.NewString()}
	if s.source == nil {
		return report, nil
	}

	titles, err := s.source.Titles(ctx)
	if err != nil {
		return report, fmt.Errorf("list titles: %w", err)
	}

	skip := map[string]bool{}
	if s.ledger != nil && len(titles) > 0 {
		skip, err = s.ledger.AlreadyFlagged(ctx, titles)
		if err != nil {
			return report, fmt.Errorf("load flagged: %w", err)
		}
	}

	eligibility := submission.NewEligibility(s.months).WithClock(func() time.Time { return now })

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if skip[title] {
			report.Skipped++
			continue
		}
		report.Checked++

		draft, ok, err := s.inspect(ctx, eligibility, title, now, report.RunID)
		if err != nil {
			report.Failed++
			s.warn("inspect draft failed", "title", title, "error", err)
			continue
		}
		if !ok {
			continue
		}

		if s.ledger != nil {
			if err := s.ledger.SaveFlagged(ctx, draft); err != nil {
				report.Failed++
				s.warn("persist flagged draft failed", "title", title, "error", err)
				continue
			}
		}
		report.Flagged = append(report.Flagged, draft)
	}

	s.info("sweep finished", "run", report.RunID, "checked", report.Checked,
		"skipped", report.Skipped, "failed", report.Failed, "flagged", len(report.Flagged))

	if len(report.Flagged) == 0 || s.notifier == nil {
		return report, nil
	}
	if err := s.notifier.PublishDigest(ctx, buildDigestMessage(report.Flagged, eligibility.Threshold())); err != nil {
		return report, fmt.Errorf("publish digest: %w", err)
	}
	return report, nil
}

func (s *Sweeper) inspect(ctx context.Context, eligibility *submission.Eligibility, title string, now time.Time, runID string) (domain.StaleDraft, bool, error) {
	p := page.New(title, s.repo)
	sub, err := s.parser.Load(ctx, p)
	if err != nil {
		return domain.StaleDraft{}, false, err
	}

	eligible, err := eligibility.IsEligibleForStaleCleanup(ctx, sub, p)
	if err != nil || !eligible {
		return domain.StaleDraft{}, false, err
	}

	modified, err := p.LastModified(ctx)
	if err != nil {
		return domain.StaleDraft{}, false, err
	}
	return domain.StaleDraft{
		Title:        title,
		LastModified: modified,
		DetectedAt:   now,
		RunID:        runID,
	}, true, nil
}

func (s *Sweeper) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sweeper) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func buildDigestMessage(drafts []domain.StaleDraft, threshold time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stale drafts (not edited since %s):\n", threshold.Format("2006-01-02"))
	for _, draft := range drafts {
		fmt.Fprintf(&b, "- %s (last edit %s)\n", draft.Title, draft.LastModified.Format("2006-01-02"))
	}
	return b.String()
}
