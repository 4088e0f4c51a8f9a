package submission

import (
	"strconv"
	"strings"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/wikitext"
)

const (
	// DefaultTemplateName is the status annotation placed on draft pages.
	DefaultTemplateName = "AFC submission"

	// NowTimestamp is substituted by the wiki with the revision time on save.
	// Being non-numeric it always sorts as the most recent entry.
	NowTimestamp = "{{subst:REVISIONTIMESTAMP}}"

	statusKey    = "1"
	timestampKey = "ts"
)

// Template is one submission status annotation.
type Template struct {
	Status    domain.ReviewStatus
	Timestamp string
	Params    wikitext.Params
}

// SortKey coerces the raw timestamp to a number. ok is false for malformed,
// empty or placeholder values.
func (t Template) SortKey() (float64, bool) {
	value := strings.TrimSpace(t.Timestamp)
	if value == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (t Template) clone() Template {
	t.Params = t.Params.Clone()
	return t
}

func fromInvocation(inv wikitext.Template) Template {
	status, _ := inv.Params.Get(statusKey)
	ts, _ := inv.Params.Get(timestampKey)

	residual := inv.Params.Clone().Delete(statusKey).Delete(timestampKey)
	return Template{
		Status:    domain.ReviewStatus(strings.ToLower(strings.TrimSpace(status))),
		Timestamp: ts,
		Params:    residual,
	}
}

func (t Template) markup(name string) string {
	params := make(wikitext.Params, 0, len(t.Params)+2)
	params = append(params,
		wikitext.Param{Key: statusKey, Value: string(t.Status)},
		wikitext.Param{Key: timestampKey, Value: t.Timestamp},
	)
	params = append(params, t.Params...)
	return wikitext.Render(name, params)
}

// ValidStatus reports whether code is one a reviewer may set.
func ValidStatus(code string) bool {
	switch domain.ReviewStatus(code) {
	case domain.ReviewPending, domain.ReviewDeclined, domain.ReviewDraft, domain.ReviewUnderReview:
		return true
	default:
		return false
	}
}
