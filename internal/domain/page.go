package domain

import "time"

// PageContent is the latest revision of a wiki page as returned by the content API.
type PageContent struct {
	Title     string
	Text      string
	Timestamp time.Time
	Missing   bool
}

// EditMode selects how the submitted text is combined with the current revision.
type EditMode string

const (
	EditReplace EditMode = "replace"
	EditAppend  EditMode = "append"
	EditPrepend EditMode = "prepend"
)

// EditRequest carries a single write against the content API. BaseTimestamp
// enables edit-conflict detection when set.
type EditRequest struct {
	Title         string
	Text          string
	Summary       string
	Mode          EditMode
	BaseTimestamp time.Time
}

// EditResult is the outcome of a successful write. NewTimestamp is zero when
// the edit changed nothing.
type EditResult struct {
	Success      bool
	NewRevID     int64
	NewTimestamp time.Time
	Raw          []byte
}

// ReviewStatus enumerates the states a draft can be moved into by a reviewer.
type ReviewStatus string

const (
	ReviewPending     ReviewStatus = ""
	ReviewDeclined    ReviewStatus = "d"
	ReviewDraft       ReviewStatus = "t"
	ReviewUnderReview ReviewStatus = "r"
)

// ReviewAction is persisted for every status change saved by a reviewer.
type ReviewAction struct {
	Title       string
	Status      ReviewStatus
	Summary     string
	RevisionID  int64
	PerformedAt time.Time
}

// StaleDraft is a draft found eligible for stale-draft cleanup during a sweep.
type StaleDraft struct {
	Title        string
	LastModified time.Time
	DetectedAt   time.Time
	RunID        string
}
