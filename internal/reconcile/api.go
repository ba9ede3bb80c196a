package reconcile

import "context"

// API is the mutation-and-read surface the engine needs from the remote
// system. The canvas package provides the production implementation; tests
// supply fakes.
type API interface {
	// ListCollection reads an entire collection, following pagination
	// until exhausted. An empty collection is a nil error.
	ListCollection(ctx context.Context, kind Kind) ([]Entity, error)

	// ListItems reads a module's items. Callers re-fetch after any
	// mutation before checking existence again.
	ListItems(ctx context.Context, moduleID int) ([]Item, error)

	// CreateMarker adds a SubHeader item at the given position and
	// returns its id.
	CreateMarker(ctx context.Context, moduleID int, title string, position int) (int, error)

	// AddItem links a content entity into a module and returns the new
	// item's id.
	AddItem(ctx context.Context, moduleID int, itemType string, contentID int, title string) (int, error)

	// Rename updates the entity's display name. The full entity is passed
	// because pages are addressed by slug, not id.
	Rename(ctx context.Context, e Entity, name string) error

	// GetPageBody fetches the current body of a page by slug.
	GetPageBody(ctx context.Context, slug string) (string, error)

	// UpdatePageBody replaces a page body.
	UpdatePageBody(ctx context.Context, slug, body string) error

	// UpdateSchedule applies a window to an entity, mapped onto the
	// kind's own field names.
	UpdateSchedule(ctx context.Context, kind Kind, id int, w Window) error
}

// LearningOutcome is a course outcome with its rating scale, the source
// material for rubric reconciliation.
type LearningOutcome struct {
	ID          int
	Title       string
	Description string
	Ratings     []Rating
}

// Rating is one level of an outcome's scale.
type Rating struct {
	Description string
	Points      float64
}

// RubricAPI is the narrower surface rubric reconciliation needs.
type RubricAPI interface {
	// ListLearningOutcomes returns every outcome in the course,
	// deduplicated across outcome groups.
	ListLearningOutcomes(ctx context.Context) ([]LearningOutcome, error)

	// ListRubricTitles returns the titles of every rubric in the course.
	ListRubricTitles(ctx context.Context) ([]string, error)

	// CreateRubricFromOutcome creates one rubric titled after the outcome
	// with the outcome's ratings as a single criterion, returning its id.
	CreateRubricFromOutcome(ctx context.Context, o LearningOutcome) (int, error)
}
