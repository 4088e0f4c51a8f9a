package submission

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"DraftReviewer/internal/wikitext"
)

// ErrNotLoaded is returned when a query runs before the submission was parsed.
var ErrNotLoaded = errors.New("submission: not loaded")

// TextSource supplies raw page text; *page.Page satisfies it.
type TextSource interface {
	Text(ctx context.Context, useCache bool) (string, error)
}

// Parser turns generic template invocations into a resolved Submission.
type Parser struct {
	name string
}

// NewParser recognises templates called name; empty falls back to DefaultTemplateName.
func NewParser(name string) *Parser {
	if name == "" {
		name = DefaultTemplateName
	}
	return &Parser{name: name}
}

// TemplateName returns the canonical name used when writing templates back.
func (p *Parser) TemplateName() string {
	return p.name
}

// Matches reports whether a template name refers to the submission template.
func (p *Parser) Matches(name string) bool {
	return wikitext.NormalizeName(name) == wikitext.NormalizeName(p.name)
}

// Parse filters, orders and reduces the submission templates among invocations.
func (p *Parser) Parse(invocations []wikitext.Template) *Submission {
	var templates []Template
	for _, inv := range invocations {
		if p.Matches(inv.Name) {
			templates = append(templates, fromInvocation(inv))
		}
	}

	sortNewestFirst(templates)

	sub := &Submission{}
	sub.resolve(templates)
	return sub
}

// ParseText extracts the templates of text and parses them.
func (p *Parser) ParseText(text string) *Submission {
	return p.Parse(wikitext.Extract(text))
}

// Load reads the page text through src and parses it.
func (p *Parser) Load(ctx context.Context, src TextSource) (*Submission, error) {
	text, err := src.Text(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load submission text: %w", err)
	}
	return p.ParseText(text), nil
}

// sortNewestFirst orders templates by descending timestamp. Entries with a
// malformed timestamp come first and keep their source order.
func sortNewestFirst(templates []Template) {
	sort.SliceStable(templates, func(i, j int) bool {
		a, aok := templates[i].SortKey()
		b, bok := templates[j].SortKey()
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return true
		case !bok:
			return false
		default:
			return a > b
		}
	})
}
