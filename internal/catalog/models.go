package catalog

import "time"

// Status represents the persisted lifecycle of a catalog item. The
// finer-grained per-pass states (text tagged, image retry, consistency
// retry) live inside the orchestrator and are not persisted.
type Status string

const (
	StatusPending Status = "pending"
	StatusTagging Status = "tagging"
	StatusTagged  Status = "tagged"
	StatusReview  Status = "review"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTagging,
	StatusTagged,
	StatusReview,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidStatus reports whether value names a known status.
func ValidStatus(value string) bool {
	_, ok := statusSet[Status(value)]
	return ok
}

// Statuses returns the lifecycle statuses in order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// Item is a concert record persisted in SQLite. Title, synopsis, performer
// and producer fields come from the external catalog and are never mutated
// by the pipeline; the classification fields are written back after the
// enforcement pass.
type Item struct {
	ID                 int64
	ExternalID         string
	Title              string
	Synopsis           string
	Performers         string
	Producer           string
	IntroImages        []string
	Status             Status
	Tags               []string
	AIKeywords         []string
	PendingForeignTags []string
	NeedReview         bool
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasSynopsis reports whether the item carries usable synopsis text.
func (i *Item) HasSynopsis() bool {
	return i != nil && len(i.Synopsis) > 0
}

// HasImages reports whether the item carries reference images.
func (i *Item) HasImages() bool {
	return i != nil && len(i.IntroImages) > 0
}

// HealthSummary describes aggregated catalog counts per lifecycle state.
type HealthSummary struct {
	Total   int
	Pending int
	Tagging int
	Tagged  int
	Review  int
	Failed  int
}
