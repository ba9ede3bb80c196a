package reconcile

import "time"

// Kind identifies which remote collection an entity belongs to.
type Kind string

const (
	KindModule     Kind = "module"
	KindPage       Kind = "page"
	KindAssignment Kind = "assignment"
	KindDiscussion Kind = "discussion_topic"
	KindRubric     Kind = "rubric"
	KindOutcome    Kind = "outcome"
)

// Canvas module item types we care about.
const (
	ItemTypeSubHeader  = "SubHeader"
	ItemTypeDiscussion = "Discussion"
	ItemTypeAssignment = "Assignment"
	ItemTypePage       = "Page"
)

// Entity is the in-run view of a remote object. It is built from a fresh
// collection read and never persisted; the remote system owns the record.
type Entity struct {
	Kind     Kind
	ID       int
	Name     string
	ParentID int

	// LinkRef points to a bound entity of a different kind, e.g. a graded
	// discussion's assignment id. Zero means unlinked.
	LinkRef int

	// Slug is the URL identifier for pages (Canvas addresses pages by
	// slug, not numeric id).
	Slug string

	// Schedule is the current availability window, when the collection
	// exposes one. Nil when the entity carries no dates.
	Schedule *Window
}

// Window is an availability window: open, due, close. CloseAt equals DueAt
// unless a schedule rule overrides it.
type Window struct {
	OpenAt  time.Time
	DueAt   time.Time
	CloseAt time.Time
}

// Equal compares the three instants. Comparison is by instant, not by
// location, so a window read back in UTC still matches.
func (w Window) Equal(o Window) bool {
	return w.OpenAt.Equal(o.OpenAt) && w.DueAt.Equal(o.DueAt) && w.CloseAt.Equal(o.CloseAt)
}

// ScheduleEqual reports whether the entity already carries the window,
// comparing only the instants its kind stores. Modules and discussions
// have no due field of their own, their lock holds the close instant, so
// a read-back fills both due and close slots with the lock and only open
// and close are meaningful for them. Assignments compare all three.
func (e Entity) ScheduleEqual(w Window) bool {
	if e.Schedule == nil {
		return false
	}
	if !e.Schedule.OpenAt.Equal(w.OpenAt) || !e.Schedule.CloseAt.Equal(w.CloseAt) {
		return false
	}
	if e.Kind != KindAssignment {
		return true
	}
	return e.Schedule.DueAt.Equal(w.DueAt)
}

// Item is one entry inside a module: a content link or a structural marker.
type Item struct {
	ID        int
	ModuleID  int
	Title     string
	Type      string
	ContentID int
	Position  int
}

// Marker is a desired structural heading inside a module.
type Marker struct {
	Title    string
	Position int
}

// Target is a single desired-state instruction.
type Target struct {
	Kind  Kind
	Rule  MatchRule
	Value string

	// DesiredName renames the matched entity when set and different.
	DesiredName string

	// DesiredBody replaces a page body when set and different. Only
	// meaningful for KindPage.
	DesiredBody string

	// Chapter drives schedule lookup; zero means no date reconciliation.
	Chapter int

	// Markers that must exist inside the matched module.
	Markers []Marker

	// LinkDiscussion adds the discussion matching Value to the matched
	// module when not already present.
	LinkDiscussion bool
}
