package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/ports"
)

// ErrNoRepository is returned when a Page has no content repository to talk to.
var ErrNoRepository = errors.New("page: repository is not configured")

// Page is a single wiki page reference with a memoised copy of its text.
// The cache lives as long as the Page and is only refreshed on request.
type Page struct {
	title string
	repo  ports.PageRepository

	text         string
	lastModified time.Time
	cached       bool
}

// New binds a title to the repository used for reads and writes.
func New(title string, repo ports.PageRepository) *Page {
	return &Page{title: title, repo: repo}
}

// Title returns the namespace-qualified page title.
func (p *Page) Title() string {
	return p.title
}

// Text returns the page text. With useCache set, a previously fetched value
// is returned without contacting the wiki.
func (p *Page) Text(ctx context.Context, useCache bool) (string, error) {
	if useCache && p.cached {
		return p.text, nil
	}
	if p.repo == nil {
		return "", ErrNoRepository
	}

	content, err := p.repo.GetPage(ctx, p.title)
	if err != nil {
		return "", err
	}

	p.text = content.Text
	p.lastModified = content.Timestamp
	p.cached = true
	return p.text, nil
}

// LastModified returns the timestamp of the latest revision, fetching the
// page once if it has not been read yet.
func (p *Page) LastModified(ctx context.Context) (time.Time, error) {
	if _, err := p.Text(ctx, true); err != nil {
		return time.Time{}, err
	}
	return p.lastModified, nil
}

// Save writes text back to the wiki. The cached revision timestamp is sent as
// the edit base so a concurrent edit is reported as a conflict upstream.
func (p *Page) Save(ctx context.Context, text, summary string, mode domain.EditMode) (domain.EditResult, error) {
	if p.repo == nil {
		return domain.EditResult{}, ErrNoRepository
	}
	if mode == "" {
		mode = domain.EditReplace
	}

	req := domain.EditRequest{
		Title:   p.title,
		Text:    text,
		Summary: summary,
		Mode:    mode,
	}
	if p.cached {
		req.BaseTimestamp = p.lastModified
	}

	result, err := p.repo.SavePage(ctx, req)
	if err != nil {
		return domain.EditResult{}, fmt.Errorf("save %s: %w", p.title, err)
	}

	// the saved revision becomes the base of the next edit; without a
	// timestamp an unread page stays uncached
	if mode == domain.EditReplace && (p.cached || !result.NewTimestamp.IsZero()) {
		p.text = text
		p.cached = true
		if !result.NewTimestamp.IsZero() {
			p.lastModified = result.NewTimestamp
		}
	}
	return result, nil
}

// Delete removes the page with the given reason.
func (p *Page) Delete(ctx context.Context, reason string) error {
	if p.repo == nil {
		return ErrNoRepository
	}
	if err := p.repo.DeletePage(ctx, p.title, reason); err != nil {
		return fmt.Errorf("delete %s: %w", p.title, err)
	}
	return nil
}
