package canvas

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"canvas-reconcile/internal/reconcile"
)

// Reconciler adapts the Canvas client to the reconcile engine's API,
// mapping each collection's own field names onto the engine's entity and
// window model.
type Reconciler struct {
	C *Client
}

var _ reconcile.API = Reconciler{}
var _ reconcile.RubricAPI = Reconciler{}

func (r Reconciler) ListCollection(ctx context.Context, kind reconcile.Kind) ([]reconcile.Entity, error) {
	switch kind {
	case reconcile.KindModule:
		mods, err := r.C.ListModules(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(mods))
		for _, m := range mods {
			out = append(out, reconcile.Entity{
				Kind:     kind,
				ID:       m.ID,
				Name:     m.Name,
				Schedule: windowFrom(m.UnlockAt, m.LockAt, m.LockAt),
			})
		}
		return out, nil

	case reconcile.KindAssignment:
		asgs, err := r.C.ListAssignments(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(asgs))
		for _, a := range asgs {
			out = append(out, reconcile.Entity{
				Kind:     kind,
				ID:       a.ID,
				Name:     a.Name,
				Schedule: windowFrom(a.UnlockAt, a.DueAt, a.LockAt),
			})
		}
		return out, nil

	case reconcile.KindDiscussion:
		topics, err := r.C.ListDiscussionTopics(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(topics))
		for _, t := range topics {
			out = append(out, reconcile.Entity{
				Kind:     kind,
				ID:       t.ID,
				Name:     t.Title,
				LinkRef:  t.AssignmentID,
				Schedule: windowFrom(t.DelayedPostAt, t.LockAt, t.LockAt),
			})
		}
		return out, nil

	case reconcile.KindPage:
		pages, err := r.C.ListPages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(pages))
		for _, p := range pages {
			out = append(out, reconcile.Entity{
				Kind: kind,
				ID:   p.PageID,
				Name: p.Title,
				Slug: p.URL,
			})
		}
		return out, nil

	case reconcile.KindRubric:
		rubrics, err := r.C.ListRubrics(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(rubrics))
		for _, rb := range rubrics {
			out = append(out, reconcile.Entity{Kind: kind, ID: rb.ID, Name: rb.Title})
		}
		return out, nil

	case reconcile.KindOutcome:
		outcomes, err := r.ListLearningOutcomes(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Entity, 0, len(outcomes))
		for _, o := range outcomes {
			out = append(out, reconcile.Entity{Kind: kind, ID: o.ID, Name: o.Title})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("canvas: unknown collection kind %q", kind)
	}
}

func (r Reconciler) ListItems(ctx context.Context, moduleID int) ([]reconcile.Item, error) {
	items, err := r.C.ListModuleItems(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.Item, 0, len(items))
	for _, it := range items {
		out = append(out, reconcile.Item{
			ID:        it.ID,
			ModuleID:  it.ModuleID,
			Title:     it.Title,
			Type:      it.Type,
			ContentID: it.ContentID,
			Position:  it.Position,
		})
	}
	return out, nil
}

func (r Reconciler) CreateMarker(ctx context.Context, moduleID int, title string, position int) (int, error) {
	return r.C.CreateSubHeader(ctx, moduleID, title, position)
}

func (r Reconciler) AddItem(ctx context.Context, moduleID int, itemType string, contentID int, title string) (int, error) {
	return r.C.AddModuleItem(ctx, moduleID, itemType, contentID, title)
}

func (r Reconciler) Rename(ctx context.Context, e reconcile.Entity, name string) error {
	form := url.Values{}
	switch e.Kind {
	case reconcile.KindModule:
		form.Set("module[name]", name)
		return r.C.UpdateModule(ctx, e.ID, form)
	case reconcile.KindAssignment:
		form.Set("assignment[name]", name)
		return r.C.UpdateAssignment(ctx, e.ID, form)
	case reconcile.KindDiscussion:
		form.Set("title", name)
		return r.C.UpdateDiscussionTopic(ctx, e.ID, form)
	case reconcile.KindPage:
		form.Set("wiki_page[title]", name)
		return r.C.UpdatePage(ctx, e.Slug, form)
	default:
		return fmt.Errorf("canvas: cannot rename kind %q", e.Kind)
	}
}

func (r Reconciler) GetPageBody(ctx context.Context, slug string) (string, error) {
	p, err := r.C.GetPage(ctx, slug)
	if err != nil {
		return "", err
	}
	return p.Body, nil
}

func (r Reconciler) UpdatePageBody(ctx context.Context, slug, body string) error {
	form := url.Values{}
	form.Set("wiki_page[body]", body)
	return r.C.UpdatePage(ctx, slug, form)
}

// UpdateSchedule maps the shared window onto each kind's own date fields:
// a module's unlock/lock, an assignment's unlock/due/lock, a discussion's
// delayed_post/lock. Module and discussion locks carry the close instant,
// so a graded discussion and its assignment twin stop accepting work at
// the same moment.
func (r Reconciler) UpdateSchedule(ctx context.Context, kind reconcile.Kind, id int, w reconcile.Window) error {
	form := url.Values{}
	switch kind {
	case reconcile.KindModule:
		form.Set("module[unlock_at]", reconcile.ISO(w.OpenAt))
		form.Set("module[lock_at]", reconcile.ISO(w.CloseAt))
		form.Set("module[published]", "true")
		return r.C.UpdateModule(ctx, id, form)
	case reconcile.KindAssignment:
		form.Set("assignment[unlock_at]", reconcile.ISO(w.OpenAt))
		form.Set("assignment[due_at]", reconcile.ISO(w.DueAt))
		form.Set("assignment[lock_at]", reconcile.ISO(w.CloseAt))
		return r.C.UpdateAssignment(ctx, id, form)
	case reconcile.KindDiscussion:
		form.Set("discussion_topic[delayed_post_at]", reconcile.ISO(w.OpenAt))
		form.Set("discussion_topic[lock_at]", reconcile.ISO(w.CloseAt))
		return r.C.UpdateDiscussionTopic(ctx, id, form)
	default:
		return fmt.Errorf("canvas: kind %q has no schedule fields", kind)
	}
}

/* -------- RubricAPI -------- */

func (r Reconciler) ListLearningOutcomes(ctx context.Context) ([]reconcile.LearningOutcome, error) {
	groups, err := r.C.ListOutcomeGroups(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	var out []reconcile.LearningOutcome
	for _, g := range groups {
		links, err := r.C.ListGroupOutcomes(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			o := l.Outcome
			if o == nil {
				o = &Outcome{ID: l.ID, Title: l.Title}
			}
			if o.ID == 0 || seen[o.ID] {
				continue
			}
			seen[o.ID] = true

			desc := o.Description
			if desc == "" {
				desc = o.DisplayName
			}
			ratings := make([]reconcile.Rating, 0, len(o.Ratings))
			for _, rt := range o.Ratings {
				ratings = append(ratings, reconcile.Rating{Description: rt.Description, Points: rt.Points})
			}
			out = append(out, reconcile.LearningOutcome{
				ID:          o.ID,
				Title:       o.Title,
				Description: desc,
				Ratings:     ratings,
			})
		}
	}
	return out, nil
}

func (r Reconciler) ListRubricTitles(ctx context.Context) ([]string, error) {
	rubrics, err := r.C.ListRubrics(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(rubrics))
	for _, rb := range rubrics {
		titles = append(titles, rb.Title)
	}
	return titles, nil
}

func (r Reconciler) CreateRubricFromOutcome(ctx context.Context, o reconcile.LearningOutcome) (int, error) {
	return r.C.CreateRubric(ctx, o)
}

// windowFrom parses the remote timestamps; nil when the entity carries no
// dates at all.
func windowFrom(open, due, closeAt string) *reconcile.Window {
	o := parseTime(open)
	d := parseTime(due)
	c := parseTime(closeAt)
	if o.IsZero() && d.IsZero() && c.IsZero() {
		return nil
	}
	return &reconcile.Window{OpenAt: o, DueAt: d, CloseAt: c}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
