package reconcile

import "context"

// twinKind maps a primary kind to the kind its LinkRef points at. Today
// the only linked pair is a graded discussion and its backing assignment.
func twinKind(k Kind) (Kind, bool) {
	if k == KindDiscussion {
		return KindAssignment, true
	}
	return "", false
}

// ApplyWindow issues the schedule update to an entity and, when it carries
// a link to a twin of another kind, to the twin as well, with the same
// three instants. A twin failure after the primary succeeded returns a
// PartialPropagationError so the caller can retry just the twin.
func ApplyWindow(ctx context.Context, api API, e Entity, w Window) error {
	if err := api.UpdateSchedule(ctx, e.Kind, e.ID, w); err != nil {
		return err
	}

	if e.LinkRef == 0 {
		return nil
	}
	tk, ok := twinKind(e.Kind)
	if !ok {
		return nil
	}

	if err := api.UpdateSchedule(ctx, tk, e.LinkRef, w); err != nil {
		return &PartialPropagationError{
			PrimaryKind: e.Kind,
			PrimaryID:   e.ID,
			TwinKind:    tk,
			TwinID:      e.LinkRef,
			Err:         err,
		}
	}
	return nil
}
