package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/page"
	"DraftReviewer/internal/ports"
	"DraftReviewer/internal/status"
	"DraftReviewer/internal/submission"
	"DraftReviewer/internal/wikitext"
)

// ErrInvalidStatus is returned when a reviewer asks for an unknown status code.
var ErrInvalidStatus = errors.New("review: invalid status code")

// ReviewerDeps wires the adapters the review workflow talks to.
type ReviewerDeps struct {
	Repository   ports.PageRepository
	Ledger       ports.ReviewLedger
	Status       *status.Log
	TemplateName string
	Logger       *slog.Logger
}

// Reviewer loads drafts, changes their review status and writes them back.
type Reviewer struct {
	repo       ports.PageRepository
	ledger     ports.ReviewLedger
	status     *status.Log
	parser     *submission.Parser
	serializer *submission.Serializer
	logger     *slog.Logger
	now        func() time.Time
}

// Review is one loaded draft together with its parsed submission state.
type Review struct {
	Page       *page.Page
	Submission *submission.Submission
}

// NewReviewer constructs the review workflow.
func NewReviewer(deps ReviewerDeps) *Reviewer {
	parser := submission.NewParser(deps.TemplateName)
	return &Reviewer{
		repo:       deps.Repository,
		ledger:     deps.Ledger,
		status:     deps.Status,
		parser:     parser,
		serializer: submission.NewSerializer(parser),
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Parser exposes the submission parser the reviewer was built with.
func (r *Reviewer) Parser() *submission.Parser {
	return r.parser
}

// Load fetches title and parses its submission templates.
func (r *Reviewer) Load(ctx context.Context, title string) (*Review, error) {
	line := r.sink(title).Add("Loading $1...", nil)

	p := page.New(title, r.repo)
	sub, err := r.parser.Load(ctx, p)
	if err != nil {
		line.Update("Could not load $1: " + err.Error())
		return nil, fmt.Errorf("load %s: %w", title, err)
	}

	line.Update("Loaded $1")
	r.debug("draft loaded", "title", title, "status", string(sub.Status()), "templates", len(sub.Templates))
	return &Review{Page: p, Submission: sub}, nil
}

// SetStatus moves the newest submission template to code and saves the page.
// review.Submission only takes the new status once the save succeeded.
func (r *Reviewer) SetStatus(ctx context.Context, review *Review, code, summary string) error {
	if review == nil || review.Submission == nil {
		return submission.ErrNotLoaded
	}
	next := review.Submission.Clone()
	if !next.SetStatus(code) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, code)
	}
	if summary == "" {
		summary = fmt.Sprintf("Setting submission status to %q", statusLabel(domain.ReviewStatus(code)))
	}

	result, err := r.save(ctx, review.Page, next, summary)
	if err != nil {
		return err
	}
	review.Submission = next

	return r.record(ctx, domain.ReviewAction{
		Title:       review.Page.Title(),
		Status:      domain.ReviewStatus(code),
		Summary:     summary,
		RevisionID:  result.NewRevID,
		PerformedAt: r.now().UTC(),
	})
}

// Clean rewrites the submission templates in canonical form and saves the page.
func (r *Reviewer) Clean(ctx context.Context, review *Review) error {
	if review == nil || review.Submission == nil {
		return submission.ErrNotLoaded
	}
	_, err := r.save(ctx, review.Page, review.Submission, "Cleaning up submission templates")
	return err
}

// Delete removes a draft, typically one found stale by the sweeper.
func (r *Reviewer) Delete(ctx context.Context, review *Review, reason string) error {
	if review == nil {
		return submission.ErrNotLoaded
	}
	line := r.sink(review.Page.Title()).Add("Deleting $1...", nil)
	if err := review.Page.Delete(ctx, reason); err != nil {
		line.Update("Could not delete $1: " + err.Error())
		return err
	}
	line.Update("Deleted $1")
	return nil
}

// Render returns the page text with the submission stack rewritten, without
// saving it.
func (r *Reviewer) Render(ctx context.Context, review *Review) (string, error) {
	if review == nil || review.Submission == nil {
		return "", submission.ErrNotLoaded
	}
	return r.render(ctx, review.Page, review.Submission)
}

func (r *Reviewer) render(ctx context.Context, p *page.Page, sub *submission.Submission) (string, error) {
	text, err := p.Text(ctx, true)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p.Title(), err)
	}
	rewritten := r.serializer.Rewrite(text, sub.Templates)
	return wikitext.RemoveEmptySectionAtEnd(rewritten), nil
}

func (r *Reviewer) save(ctx context.Context, p *page.Page, sub *submission.Submission, summary string) (domain.EditResult, error) {
	line := r.sink(p.Title()).Add("Saving $1...", nil)

	text, err := r.render(ctx, p, sub)
	if err != nil {
		line.Update("Could not save $1: " + err.Error())
		return domain.EditResult{}, err
	}

	result, err := p.Save(ctx, text, summary, domain.EditReplace)
	if err != nil {
		line.Update("Could not save $1: " + err.Error())
		return domain.EditResult{}, err
	}

	line.Update("Saved $1")
	return result, nil
}

func (r *Reviewer) record(ctx context.Context, action domain.ReviewAction) error {
	if r.ledger == nil {
		return nil
	}
	if err := r.ledger.RecordAction(ctx, action); err != nil {
		return fmt.Errorf("record action for %s: %w", action.Title, err)
	}
	return nil
}

func (r *Reviewer) sink(title string) status.Sink {
	if r.status == nil {
		return status.Nop{}
	}
	return r.status.ForPage(title)
}

func (r *Reviewer) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func statusLabel(s domain.ReviewStatus) string {
	switch s {
	case domain.ReviewDeclined:
		return "declined"
	case domain.ReviewDraft:
		return "draft"
	case domain.ReviewUnderReview:
		return "under review"
	default:
		return "pending"
	}
}
