package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeAPI simulates the remote system in memory. Mutations are visible to
// subsequent reads, matching the read-your-writes contract.
type fakeAPI struct {
	collections map[Kind][]Entity
	items       map[int][]Item
	pageBodies  map[string]string

	createMarkerCalls int
	addItemCalls      int
	renameCalls       int
	scheduleCalls     []string // "kind:id"

	// failScheduleKind makes UpdateSchedule fail for that kind.
	failScheduleKind Kind
	nextItemID       int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		collections: map[Kind][]Entity{},
		items:       map[int][]Item{},
		pageBodies:  map[string]string{},
		nextItemID:  5000,
	}
}

func (f *fakeAPI) ListCollection(ctx context.Context, kind Kind) ([]Entity, error) {
	out := make([]Entity, len(f.collections[kind]))
	copy(out, f.collections[kind])
	return out, nil
}

func (f *fakeAPI) ListItems(ctx context.Context, moduleID int) ([]Item, error) {
	out := make([]Item, len(f.items[moduleID]))
	copy(out, f.items[moduleID])
	return out, nil
}

func (f *fakeAPI) CreateMarker(ctx context.Context, moduleID int, title string, position int) (int, error) {
	f.createMarkerCalls++
	f.nextItemID++
	f.items[moduleID] = append(f.items[moduleID], Item{
		ID:       f.nextItemID,
		ModuleID: moduleID,
		Title:    title,
		Type:     ItemTypeSubHeader,
		Position: position,
	})
	return f.nextItemID, nil
}

func (f *fakeAPI) AddItem(ctx context.Context, moduleID int, itemType string, contentID int, title string) (int, error) {
	f.addItemCalls++
	f.nextItemID++
	f.items[moduleID] = append(f.items[moduleID], Item{
		ID:        f.nextItemID,
		ModuleID:  moduleID,
		Title:     title,
		Type:      itemType,
		ContentID: contentID,
	})
	return f.nextItemID, nil
}

func (f *fakeAPI) Rename(ctx context.Context, e Entity, name string) error {
	f.renameCalls++
	col := f.collections[e.Kind]
	for i := range col {
		if col[i].ID == e.ID {
			col[i].Name = name
		}
	}
	return nil
}

func (f *fakeAPI) GetPageBody(ctx context.Context, slug string) (string, error) {
	return f.pageBodies[slug], nil
}

func (f *fakeAPI) UpdatePageBody(ctx context.Context, slug, body string) error {
	f.pageBodies[slug] = body
	return nil
}

func (f *fakeAPI) UpdateSchedule(ctx context.Context, kind Kind, id int, w Window) error {
	if kind == f.failScheduleKind {
		return fmt.Errorf("injected %s failure", kind)
	}
	f.scheduleCalls = append(f.scheduleCalls, fmt.Sprintf("%s:%d", kind, id))
	col := f.collections[kind]
	for i := range col {
		if col[i].ID == id {
			cp := w
			col[i].Schedule = &cp
		}
	}
	return nil
}

func (f *fakeAPI) scheduleOf(kind Kind, id int) *Window {
	for _, e := range f.collections[kind] {
		if e.ID == id {
			return e.Schedule
		}
	}
	return nil
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	loc, err := time.LoadLocation("America/Detroit")
	if err != nil {
		t.Fatal(err)
	}
	return &Resolver{
		Year:     2026,
		Location: loc,
		Rules: map[int]Rule{
			2: {Available: MonthDay{time.January, 19}, Due: MonthDay{time.January, 25}},
		},
	}
}

func TestDriverSkipsWhenMarkerExists(t *testing.T) {
	// A module that already carries the "Discussions" marker must yield a
	// Skipped outcome with zero creation calls.
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 42, Name: "Module 2 - Applying Pre-Engagement Activities"}}
	api.items[42] = []Item{{ID: 1, Type: ItemTypeSubHeader, Title: "Discussions", Position: 1}}

	d := &Driver{API: api}
	outcomes := d.Run(context.Background(), []Target{{
		Kind:    KindModule,
		Rule:    RuleContains,
		Value:   "Module 2",
		Markers: []Marker{{Title: "Discussions", Position: 1}},
	}})

	if len(outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped, got %s (%s)", outcomes[0].Status, outcomes[0].Reason)
	}
	if api.createMarkerCalls != 0 {
		t.Errorf("Expected zero creation calls, got %d", api.createMarkerCalls)
	}
}

func TestDriverCreatesMissingMarkers(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 42, Name: "Module 2"}}

	d := &Driver{API: api}
	target := Target{
		Kind:  KindModule,
		Rule:  RuleContains,
		Value: "Module 2",
		Markers: []Marker{
			{Title: "Discussions", Position: 1},
			{Title: "Assignments", Position: 3},
		},
	}
	outcomes := d.Run(context.Background(), []Target{target})

	if outcomes[0].Status != StatusCreated {
		t.Fatalf("Expected created, got %s", outcomes[0].Status)
	}
	if api.createMarkerCalls != 2 {
		t.Errorf("Expected 2 marker creations, got %d", api.createMarkerCalls)
	}

	// Second run against the mutated fake must be a no-op.
	outcomes = d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped on second run, got %s", outcomes[0].Status)
	}
	if api.createMarkerCalls != 2 {
		t.Errorf("Expected no further creations, got %d total", api.createMarkerCalls)
	}
}

func TestDriverRename(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 7, Name: "Module 3"}}

	d := &Driver{API: api}
	target := Target{
		Kind:        KindModule,
		Rule:        RulePrefix,
		Value:       "Module 3",
		DesiredName: "Module 3 - 3.0 Enumeration and Reconnaissance",
	}

	outcomes := d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("Expected updated, got %s", outcomes[0].Status)
	}
	if len(outcomes[0].FieldsChanged) != 1 || outcomes[0].FieldsChanged[0] != "name" {
		t.Errorf("Expected fields [name], got %v", outcomes[0].FieldsChanged)
	}

	outcomes = d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped once renamed, got %s", outcomes[0].Status)
	}
	if api.renameCalls != 1 {
		t.Errorf("Expected 1 rename call, got %d", api.renameCalls)
	}
}

func TestDriverNotFoundIsSkip(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 1, Name: "Orientation"}}

	d := &Driver{API: api}
	outcomes := d.Run(context.Background(), []Target{{Kind: KindModule, Rule: RuleContains, Value: "Module 9"}})

	if outcomes[0].Status != StatusSkipped {
		t.Fatalf("Expected skipped, got %s", outcomes[0].Status)
	}
	if outcomes[0].Reason != "no match" {
		t.Errorf("Expected reason 'no match', got %q", outcomes[0].Reason)
	}
}

func TestDriverAmbiguityFailsLoudly(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{
		{Kind: KindModule, ID: 1, Name: "Module 1 - Intro"},
		{Kind: KindModule, ID: 2, Name: "Module 10 - Reporting"},
	}

	d := &Driver{API: api}
	outcomes := d.Run(context.Background(), []Target{{Kind: KindModule, Rule: RulePrefix, Value: "Module 1"}})

	if outcomes[0].Status != StatusFailed {
		t.Fatalf("Expected failed on ambiguity, got %s", outcomes[0].Status)
	}
	var amb *AmbiguousMatchError
	if !errors.As(outcomes[0].Err, &amb) {
		t.Errorf("Expected AmbiguousMatchError, got %v", outcomes[0].Err)
	}
}

func TestDriverScheduleAndTwin(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindDiscussion] = []Entity{{Kind: KindDiscussion, ID: 300, Name: "Module 2 Discussion Board", LinkRef: 800}}
	api.collections[KindAssignment] = []Entity{{Kind: KindAssignment, ID: 800, Name: "Module 2 Discussion Board"}}

	d := &Driver{API: api, Resolver: testResolver(t)}
	target := Target{Kind: KindDiscussion, Rule: RuleContains, Value: "Module 2", Chapter: 2}

	outcomes := d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("Expected updated, got %s (%s)", outcomes[0].Status, outcomes[0].Reason)
	}
	if outcomes[0].TwinIncomplete {
		t.Error("Expected complete propagation")
	}

	// Twin consistency: both entities carry identical instants.
	disc := api.scheduleOf(KindDiscussion, 300)
	asg := api.scheduleOf(KindAssignment, 800)
	if disc == nil || asg == nil {
		t.Fatal("Expected schedules written to both entities")
	}
	if !disc.Equal(*asg) {
		t.Errorf("Twin drift: discussion %v vs assignment %v", disc, asg)
	}

	// Idempotence: second run reads back equal instants and skips.
	outcomes = d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped on second run, got %s", outcomes[0].Status)
	}
}

func TestDriverCloseOverrideIdempotent(t *testing.T) {
	// A module read back from the remote holds its lock instant in both
	// the due and close slots. Under a rule whose close overrides due,
	// that read-back must still count as already applied.
	loc, err := time.LoadLocation("America/Detroit")
	if err != nil {
		t.Fatal(err)
	}
	closeAt := MonthDay{time.February, 8}
	resolver := &Resolver{
		Year:     2026,
		Location: loc,
		Rules: map[int]Rule{
			3: {Available: MonthDay{time.January, 26}, Due: MonthDay{time.February, 1}, Close: &closeAt},
		},
	}
	w, err := resolver.Resolve(3)
	if err != nil {
		t.Fatal(err)
	}
	readBack := Window{OpenAt: w.OpenAt, DueAt: w.CloseAt, CloseAt: w.CloseAt}

	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 7, Name: "Module 3", Schedule: &readBack}}

	d := &Driver{API: api, Resolver: resolver}
	outcomes := d.Run(context.Background(), []Target{{Kind: KindModule, Rule: RuleContains, Value: "Module 3", Chapter: 3}})

	if outcomes[0].Status != StatusSkipped {
		t.Fatalf("Expected skipped, got %s (%s)", outcomes[0].Status, outcomes[0].Reason)
	}
	if len(api.scheduleCalls) != 0 {
		t.Errorf("Expected no schedule calls, got %d", len(api.scheduleCalls))
	}
}

func TestDriverPartialPropagation(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindDiscussion] = []Entity{{Kind: KindDiscussion, ID: 300, Name: "Module 2 Discussion Board", LinkRef: 800}}
	api.collections[KindAssignment] = []Entity{{Kind: KindAssignment, ID: 800, Name: "Module 2 Discussion Board"}}
	api.failScheduleKind = KindAssignment

	d := &Driver{API: api, Resolver: testResolver(t)}
	outcomes := d.Run(context.Background(), []Target{{Kind: KindDiscussion, Rule: RuleContains, Value: "Module 2", Chapter: 2}})

	out := outcomes[0]
	if out.Status != StatusUpdated {
		t.Fatalf("Expected updated with annotation, got %s", out.Status)
	}
	if !out.TwinIncomplete {
		t.Error("Expected twin_incomplete=true")
	}
	var partial *PartialPropagationError
	if !errors.As(out.Err, &partial) {
		t.Fatalf("Expected PartialPropagationError, got %v", out.Err)
	}
	if partial.TwinID != 800 {
		t.Errorf("Expected twin id 800 reported, got %d", partial.TwinID)
	}
}

func TestDriverUnknownChapterFailsTarget(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 7, Name: "Module 99"}}

	d := &Driver{API: api, Resolver: testResolver(t)}
	outcomes := d.Run(context.Background(), []Target{{Kind: KindModule, Rule: RuleContains, Value: "Module 99", Chapter: 99}})

	if outcomes[0].Status != StatusFailed {
		t.Fatalf("Expected failed, got %s", outcomes[0].Status)
	}
	var unknown *UnknownChapterError
	if !errors.As(outcomes[0].Err, &unknown) {
		t.Errorf("Expected UnknownChapterError, got %v", outcomes[0].Err)
	}
}

func TestDriverBatchContinuesPastFailure(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{
		{Kind: KindModule, ID: 1, Name: "Module 1"},
		{Kind: KindModule, ID: 2, Name: "Module 2"},
	}

	d := &Driver{API: api, Resolver: testResolver(t)}
	outcomes := d.Run(context.Background(), []Target{
		{Kind: KindModule, Rule: RuleContains, Value: "Module 1", Chapter: 99}, // no rule -> failed
		{Kind: KindModule, Rule: RuleContains, Value: "Module 2", Chapter: 2},
	})

	if outcomes[0].Status != StatusFailed {
		t.Errorf("Expected first target failed, got %s", outcomes[0].Status)
	}
	if outcomes[1].Status != StatusUpdated {
		t.Errorf("Expected second target processed independently, got %s", outcomes[1].Status)
	}
}

func TestDriverLinksDiscussion(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 42, Name: "Module 2 - Pre-Engagement"}}
	api.collections[KindDiscussion] = []Entity{{Kind: KindDiscussion, ID: 300, Name: "Module 2 Discussion Board"}}

	d := &Driver{API: api}
	target := Target{Kind: KindModule, Rule: RuleContains, Value: "Module 2", LinkDiscussion: true}

	outcomes := d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusCreated {
		t.Fatalf("Expected created, got %s (%s)", outcomes[0].Status, outcomes[0].Reason)
	}
	if api.addItemCalls != 1 {
		t.Errorf("Expected 1 add-item call, got %d", api.addItemCalls)
	}

	items := api.items[42]
	if len(items) != 1 || items[0].Type != ItemTypeDiscussion || items[0].ContentID != 300 {
		t.Fatalf("Unexpected linked item %+v", items)
	}
	if items[0].Title != "Discuss Module 2 - Pre-Engagement" {
		t.Errorf("Unexpected item title %q", items[0].Title)
	}

	// Already linked on the second run.
	outcomes = d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped on second run, got %s", outcomes[0].Status)
	}
	if api.addItemCalls != 1 {
		t.Errorf("Expected no further add-item calls, got %d", api.addItemCalls)
	}
}

func TestDriverPageBody(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindPage] = []Entity{{Kind: KindPage, ID: 12, Name: "Module 1 Overview", Slug: "module-1-overview"}}
	api.pageBodies["module-1-overview"] = "<p>old</p>"

	d := &Driver{API: api}
	target := Target{Kind: KindPage, Rule: RuleContains, Value: "Module 1", DesiredBody: "<h1>Module 1</h1>"}

	outcomes := d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("Expected updated, got %s", outcomes[0].Status)
	}
	if api.pageBodies["module-1-overview"] != "<h1>Module 1</h1>" {
		t.Errorf("Body not written: %q", api.pageBodies["module-1-overview"])
	}

	outcomes = d.Run(context.Background(), []Target{target})
	if outcomes[0].Status != StatusSkipped {
		t.Errorf("Expected skipped when body already matches, got %s", outcomes[0].Status)
	}
}

func TestDriverDryRun(t *testing.T) {
	api := newFakeAPI()
	api.collections[KindModule] = []Entity{{Kind: KindModule, ID: 42, Name: "Module 2"}}

	d := &Driver{API: api, DryRun: true}
	outcomes := d.Run(context.Background(), []Target{{
		Kind:    KindModule,
		Rule:    RuleContains,
		Value:   "Module 2",
		Markers: []Marker{{Title: "Discussions", Position: 1}},
	}})

	if outcomes[0].Status != StatusCreated {
		t.Fatalf("Expected dry-run to report the pending creation, got %s", outcomes[0].Status)
	}
	if api.createMarkerCalls != 0 {
		t.Errorf("Dry run must not mutate, got %d creation calls", api.createMarkerCalls)
	}
}
