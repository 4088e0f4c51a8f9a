package source

import (
	"context"
	"fmt"
	"strings"

	"DraftReviewer/internal/config"
	"DraftReviewer/internal/ports"
)

// Static returns the titles listed in configuration.
type Static struct{}

// Name identifies the strategy inside the registry.
func (Static) Name() string {
	return config.SourceStatic
}

// List trims and returns the configured titles, honouring Limit.
func (Static) List(ctx context.Context, req Request) ([]string, error) {
	titles := make([]string, 0, len(req.Titles))
	for _, title := range req.Titles {
		if title = strings.TrimSpace(title); title != "" {
			titles = append(titles, title)
		}
		if req.Limit > 0 && len(titles) >= req.Limit {
			break
		}
	}
	return titles, nil
}

// Category lists the members of a wiki category.
type Category struct {
	lister ports.CategoryLister
}

// NewCategory wires the category listing API.
func NewCategory(lister ports.CategoryLister) *Category {
	return &Category{lister: lister}
}

// Name identifies the strategy inside the registry.
func (c *Category) Name() string {
	return config.SourceCategory
}

// List returns up to Limit members of req.Category.
func (c *Category) List(ctx context.Context, req Request) ([]string, error) {
	if c.lister == nil {
		return nil, fmt.Errorf("category lister is not configured")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("no category provided for source %s", req.SourceName)
	}
	return c.lister.CategoryMembers(ctx, req.Category, req.Limit)
}
