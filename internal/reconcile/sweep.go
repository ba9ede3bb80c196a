package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ChapterSweep applies the chapter schedule to every entity in a
// collection whose title names a chapter. Titles without a chapter number
// and chapters with no rule are per-entity skips, matching how course
// content is rolled out incrementally. Graded discussions propagate to
// their assignment twins.
func ChapterSweep(ctx context.Context, api API, resolver Resolver, kind Kind, dryRun bool) []Outcome {
	col, err := api.ListCollection(ctx, kind)
	if err != nil {
		return []Outcome{failOutcome(Outcome{Kind: kind}, "collection read failed", err)}
	}

	outcomes := make([]Outcome, 0, len(col))
	for _, e := range col {
		out := Outcome{Kind: kind, Rule: RuleContains, Value: e.Name, EntityID: e.ID, EntityName: e.Name}

		ch := ChapterFromTitle(e.Name)
		if ch == 0 {
			out.Status = StatusSkipped
			out.Reason = "no chapter number in title"
			outcomes = append(outcomes, out)
			continue
		}

		w, err := resolver.Resolve(ch)
		var unknown *UnknownChapterError
		if errors.As(err, &unknown) {
			out.Status = StatusSkipped
			out.Reason = fmt.Sprintf("chapter %d not in rule table", ch)
			outcomes = append(outcomes, out)
			continue
		}
		if err != nil {
			outcomes = append(outcomes, failOutcome(out, "schedule resolution failed", err))
			continue
		}

		if e.ScheduleEqual(w) {
			out.Status = StatusSkipped
			out.Reason = "schedule already in desired state"
			outcomes = append(outcomes, out)
			continue
		}

		if dryRun {
			out.Status = StatusUpdated
			out.FieldsChanged = []string{"schedule"}
			outcomes = append(outcomes, out)
			continue
		}

		err = ApplyWindow(ctx, api, e, w)
		var partial *PartialPropagationError
		switch {
		case errors.As(err, &partial):
			out.Status = StatusUpdated
			out.TwinIncomplete = true
			out.FieldsChanged = []string{"schedule"}
			out.Err = err
			out.Error = err.Error()
		case err != nil:
			out = failOutcome(out, "schedule update failed", err)
		default:
			out.Status = StatusUpdated
			out.FieldsChanged = []string{"schedule"}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}
