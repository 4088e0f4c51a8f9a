package submission

import (
	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/wikitext"
)

// Submission is the resolved review state of one draft.
//
// A Submission is mutated in place and must not be shared between goroutines
// without external locking.
type Submission struct {
	IsPending            bool
	IsUnderReview        bool
	IsDeclined           bool
	IsDraft              bool
	IsCurrentlySubmitted bool

	// Params merges the residual parameters of the retained templates; the
	// newest template wins on key collisions.
	Params wikitext.Params

	// Templates is the retained stack, newest first.
	Templates []Template
}

// TemplateData overrides the defaults of a template added with AddNewTemplate.
// An empty Timestamp means NowTimestamp.
type TemplateData struct {
	Status    domain.ReviewStatus
	Timestamp string
	Params    wikitext.Params
}

// Status returns the dominant status of the submission.
func (s *Submission) Status() domain.ReviewStatus {
	switch {
	case s.IsPending:
		return domain.ReviewPending
	case s.IsUnderReview:
		return domain.ReviewUnderReview
	case s.IsDeclined:
		return domain.ReviewDeclined
	default:
		return domain.ReviewDraft
	}
}

// SetStatus changes the status of the newest template. Unknown codes are
// rejected without touching the stack.
func (s *Submission) SetStatus(code string) bool {
	if !ValidStatus(code) {
		return false
	}
	if len(s.Templates) == 0 {
		s.AddNewTemplate(TemplateData{Status: domain.ReviewStatus(code)})
		return true
	}

	stack := cloneStack(s.Templates)
	stack[0].Status = domain.ReviewStatus(code)
	s.resolve(stack)
	return true
}

// AddNewTemplate pushes a template on top of the stack and re-resolves.
func (s *Submission) AddNewTemplate(data TemplateData) {
	tpl := Template{
		Status:    data.Status,
		Timestamp: data.Timestamp,
		Params:    data.Params.Clone(),
	}
	if tpl.Timestamp == "" {
		tpl.Timestamp = NowTimestamp
	}

	stack := make([]Template, 0, len(s.Templates)+1)
	stack = append(stack, tpl)
	stack = append(stack, cloneStack(s.Templates)...)
	s.resolve(stack)
}

// Clone returns a deep copy that can be mutated without affecting s.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	out.Params = s.Params.Clone()
	out.Templates = cloneStack(s.Templates)
	return &out
}

// resolve walks an ordered stack from newest to oldest, derives the status
// flags and keeps only the templates that still carry information: draft
// markers and repeated pending markers are dropped once a submission,
// decline or review is on record.
func (s *Submission) resolve(ordered []Template) {
	var (
		pending, declined, draft, underReview bool
		params                                wikitext.Params
		retained                              = make([]Template, 0, len(ordered))
	)

	for _, tpl := range ordered {
		switch tpl.Status {
		case domain.ReviewDeclined:
			if !pending && !draft && !underReview {
				declined = true
			}
		case domain.ReviewDraft:
			if pending || declined || underReview {
				continue
			}
			draft = true
		case domain.ReviewUnderReview:
			if !pending && !declined {
				underReview = true
			}
		default:
			if pending || declined || underReview {
				continue
			}
			pending = true
			draft = false
			underReview = false
		}

		for _, param := range tpl.Params {
			if !params.Has(param.Key) {
				params = append(params, param)
			}
		}
		retained = append(retained, tpl)
	}

	s.IsPending = pending
	s.IsDeclined = declined
	s.IsDraft = draft
	s.IsUnderReview = underReview
	s.IsCurrentlySubmitted = pending || underReview
	s.Params = params
	s.Templates = retained
}

func cloneStack(stack []Template) []Template {
	out := make([]Template, len(stack))
	for i, tpl := range stack {
		out[i] = tpl.clone()
	}
	return out
}
