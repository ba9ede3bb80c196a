// Package report renders run results: an outcome CSV for spreadsheet
// review and a compressed JSON snapshot for archival.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"canvas-reconcile/internal/reconcile"
)

// Outcome CSV template. Keep header order EXACT.
var outcomeHeader = []string{
	"KIND",
	"RULE",
	"VALUE",
	"STATUS",
	"REASON",
	"ENTITY_ID",
	"ENTITY_NAME",
	"FIELDS_CHANGED",
	"TWIN_INCOMPLETE",
	"ERROR",
}

// WriteOutcomeCSV writes one row per outcome in run order.
func WriteOutcomeCSV(w io.Writer, outcomes []reconcile.Outcome) error {
	cw := csv.NewWriter(w)
	// match typical templates
	cw.UseCRLF = true

	if err := cw.Write(outcomeHeader); err != nil {
		return err
	}

	for _, o := range outcomes {
		if err := cw.Write(toOutcomeRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toOutcomeRow(o reconcile.Outcome) []string {
	id := ""
	if o.EntityID != 0 {
		id = strconv.Itoa(o.EntityID)
	}

	twin := ""
	if o.TwinIncomplete {
		twin = "true"
	}

	return []string{
		string(o.Kind),                      // KIND
		string(o.Rule),                      // RULE
		o.Value,                             // VALUE
		string(o.Status),                    // STATUS
		o.Reason,                            // REASON
		id,                                  // ENTITY_ID
		o.EntityName,                        // ENTITY_NAME
		strings.Join(o.FieldsChanged, "|"),  // FIELDS_CHANGED
		twin,                                // TWIN_INCOMPLETE
		o.Error,                             // ERROR
	}
}

// RunSnapshot is the archival record of one run.
type RunSnapshot struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	CourseID    string              `json:"courseId"`
	DryRun      bool                `json:"dryRun"`
	Outcomes    []reconcile.Outcome `json:"outcomes"`
	Summary     reconcile.Summary   `json:"summary"`
}

// NewRunSnapshot stamps a snapshot with the current time and summary.
func NewRunSnapshot(courseID string, dryRun bool, outcomes []reconcile.Outcome) RunSnapshot {
	return RunSnapshot{
		GeneratedAt: time.Now().UTC(),
		CourseID:    courseID,
		DryRun:      dryRun,
		Outcomes:    outcomes,
		Summary:     reconcile.Summarize(outcomes),
	}
}

// WriteSnapshot writes the snapshot as brotli-compressed JSON.
func WriteSnapshot(w io.Writer, s RunSnapshot) error {
	bw := brotli.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}
	return bw.Close()
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (RunSnapshot, error) {
	var s RunSnapshot
	dec := json.NewDecoder(brotli.NewReader(r))
	if err := dec.Decode(&s); err != nil {
		return RunSnapshot{}, err
	}
	return s, nil
}
