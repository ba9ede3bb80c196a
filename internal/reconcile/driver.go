package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Driver walks a batch of targets to terminal outcomes, one at a time.
// Each target operates on its own freshly read snapshot; nothing is cached
// across targets, so a later target never acts on stale existence info.
type Driver struct {
	API      API
	Resolver *Resolver

	// AllowFirstMatch enables the legacy first-match policy on ambiguous
	// prefix/keyword matches instead of failing.
	AllowFirstMatch bool

	// DryRun records what would change without issuing mutations.
	DryRun bool
}

// Run processes every target independently and reports outcomes in target
// order. A failing target never blocks the rest of the batch.
func (d *Driver) Run(ctx context.Context, targets []Target) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	for _, t := range targets {
		outcomes = append(outcomes, d.runTarget(ctx, t))
	}
	return outcomes
}

func (d *Driver) runTarget(ctx context.Context, t Target) Outcome {
	out := Outcome{Kind: t.Kind, Rule: t.Rule, Value: t.Value}

	col, err := d.API.ListCollection(ctx, t.Kind)
	if err != nil {
		return failOutcome(out, "collection read failed", err)
	}

	e, err := d.match(col, t)
	if errors.Is(err, ErrNotFound) {
		out.Status = StatusSkipped
		out.Reason = "no match"
		return out
	}
	if err != nil {
		return failOutcome(out, "identity resolution failed", err)
	}
	out.EntityID = e.ID
	out.EntityName = e.Name

	var created int

	if t.DesiredName != "" && t.DesiredName != e.Name {
		if !d.DryRun {
			if err := d.API.Rename(ctx, e, t.DesiredName); err != nil {
				return failOutcome(out, "rename failed", err)
			}
		}
		out.FieldsChanged = append(out.FieldsChanged, "name")
	}

	if t.DesiredBody != "" && t.Kind == KindPage {
		cur, err := d.API.GetPageBody(ctx, e.Slug)
		if err != nil {
			return failOutcome(out, "page read failed", err)
		}
		if strings.TrimSpace(cur) != strings.TrimSpace(t.DesiredBody) {
			if !d.DryRun {
				if err := d.API.UpdatePageBody(ctx, e.Slug, t.DesiredBody); err != nil {
					return failOutcome(out, "page update failed", err)
				}
			}
			out.FieldsChanged = append(out.FieldsChanged, "body")
		}
	}

	if t.Chapter > 0 {
		if d.Resolver == nil {
			return failOutcome(out, "schedule resolution failed", fmt.Errorf("target has chapter %d but no resolver configured", t.Chapter))
		}
		w, err := d.Resolver.Resolve(t.Chapter)
		if err != nil {
			return failOutcome(out, "schedule resolution failed", err)
		}
		if !e.ScheduleEqual(w) {
			var err error
			if !d.DryRun {
				err = ApplyWindow(ctx, d.API, e, w)
			}
			var partial *PartialPropagationError
			switch {
			case errors.As(err, &partial):
				out.TwinIncomplete = true
				out.Err = err
				out.Error = err.Error()
				out.FieldsChanged = append(out.FieldsChanged, "schedule")
			case err != nil:
				return failOutcome(out, "schedule update failed", err)
			default:
				out.FieldsChanged = append(out.FieldsChanged, "schedule")
			}
		}
	}

	if len(t.Markers) > 0 || t.LinkDiscussion {
		items, err := d.API.ListItems(ctx, e.ID)
		if err != nil {
			return failOutcome(out, "item read failed", err)
		}

		for _, m := range t.Markers {
			if HasMarker(items, m.Title) {
				continue
			}
			if !d.DryRun {
				if _, err := d.API.CreateMarker(ctx, e.ID, m.Title, m.Position); err != nil {
					return failOutcome(out, fmt.Sprintf("marker %q creation failed", m.Title), err)
				}
				// read-your-writes: refresh before the next guard check
				items, err = d.API.ListItems(ctx, e.ID)
				if err != nil {
					return failOutcome(out, "item re-read failed", err)
				}
			}
			created++
		}

		if t.LinkDiscussion {
			discs, err := d.API.ListCollection(ctx, KindDiscussion)
			if err != nil {
				return failOutcome(out, "discussion read failed", err)
			}
			disc, err := MatchContains(discs, t.Value, d.AllowFirstMatch)
			switch {
			case errors.Is(err, ErrNotFound):
				out.Reason = joinReason(out.Reason, fmt.Sprintf("no discussion matches %q", t.Value))
			case err != nil:
				return failOutcome(out, "discussion resolution failed", err)
			case !HasLink(items, ItemTypeDiscussion, disc.ID):
				if !d.DryRun {
					if _, err := d.API.AddItem(ctx, e.ID, ItemTypeDiscussion, disc.ID, "Discuss "+e.Name); err != nil {
						return failOutcome(out, "discussion link failed", err)
					}
				}
				created++
			}
		}
	}

	switch {
	case out.TwinIncomplete:
		out.Status = StatusUpdated
	case created > 0:
		out.Status = StatusCreated
	case len(out.FieldsChanged) > 0:
		out.Status = StatusUpdated
	default:
		out.Status = StatusSkipped
		if out.Reason == "" {
			out.Reason = "already in desired state"
		}
	}
	return out
}

func (d *Driver) match(col []Entity, t Target) (Entity, error) {
	switch t.Rule {
	case RuleExact:
		id, err := strconv.Atoi(strings.TrimSpace(t.Value))
		if err != nil {
			return Entity{}, fmt.Errorf("exact-id value %q is not numeric", t.Value)
		}
		return MatchExact(col, id)
	case RulePrefix:
		return MatchPrefix(col, t.Value, d.AllowFirstMatch)
	case RuleContains:
		return MatchContains(col, t.Value, d.AllowFirstMatch)
	default:
		return Entity{}, fmt.Errorf("unknown match rule %q", t.Rule)
	}
}

func failOutcome(out Outcome, reason string, err error) Outcome {
	out.Status = StatusFailed
	out.Reason = reason
	out.Err = err
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func joinReason(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
