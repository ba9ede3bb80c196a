package reconcile

import "context"

// EnsureRubrics creates one rubric per course outcome, skipping outcomes
// whose title already names an existing rubric. Creation failures are
// per-outcome; the rest of the batch proceeds.
func EnsureRubrics(ctx context.Context, api RubricAPI, dryRun bool) []Outcome {
	outcomes, err := api.ListLearningOutcomes(ctx)
	if err != nil {
		return []Outcome{failOutcome(Outcome{Kind: KindRubric}, "outcome read failed", err)}
	}

	titles, err := api.ListRubricTitles(ctx)
	if err != nil {
		return []Outcome{failOutcome(Outcome{Kind: KindRubric}, "rubric read failed", err)}
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	results := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		out := Outcome{Kind: KindRubric, Rule: RuleContains, Value: o.Title}

		if existing[o.Title] {
			out.Status = StatusSkipped
			out.Reason = "rubric with this title already exists"
			results = append(results, out)
			continue
		}

		if dryRun {
			out.Status = StatusCreated
			results = append(results, out)
			continue
		}

		id, err := api.CreateRubricFromOutcome(ctx, o)
		if err != nil {
			results = append(results, failOutcome(out, "rubric creation failed", err))
			continue
		}
		out.Status = StatusCreated
		out.EntityID = id
		out.EntityName = o.Title
		results = append(results, out)
	}
	return results
}
