package report

import (
	"bytes"
	"strings"
	"testing"

	"canvas-reconcile/internal/reconcile"
)

func sampleOutcomes() []reconcile.Outcome {
	return []reconcile.Outcome{
		{
			Kind:          reconcile.KindModule,
			Rule:          reconcile.RuleContains,
			Value:         "Module 2",
			Status:        reconcile.StatusCreated,
			EntityID:      42,
			EntityName:    "Module 2 - Pre-Engagement",
			FieldsChanged: []string{"name", "schedule"},
		},
		{
			Kind:   reconcile.KindPage,
			Rule:   reconcile.RulePrefix,
			Value:  "Syllabus",
			Status: reconcile.StatusSkipped,
			Reason: "already in desired state",
		},
		{
			Kind:           reconcile.KindDiscussion,
			Rule:           reconcile.RuleContains,
			Value:          "Module 3",
			Status:         reconcile.StatusUpdated,
			TwinIncomplete: true,
			Error:          "injected assignment failure",
		},
	}
}

func TestWriteOutcomeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutcomeCSV(&buf, sampleOutcomes()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\r\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(outcomeHeader, ",") {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "name|schedule") {
		t.Errorf("Expected joined fields in row, got %q", lines[1])
	}
	if !strings.Contains(lines[3], "true") {
		t.Errorf("Expected twin flag in row, got %q", lines[3])
	}
}

func TestWriteOutcomeCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutcomeCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != strings.Join(outcomeHeader, ",")+"\r\n" {
		t.Errorf("Expected header only, got %q", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewRunSnapshot("99276", false, sampleOutcomes())

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, s); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.CourseID != "99276" {
		t.Errorf("Expected course id preserved, got %q", got.CourseID)
	}
	if len(got.Outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(got.Outcomes))
	}
	if got.Summary.Created != 1 || got.Summary.Updated != 1 || got.Summary.Skipped != 1 {
		t.Errorf("Unexpected summary %+v", got.Summary)
	}
	if got.Summary.TwinIncomplete != 1 {
		t.Errorf("Expected twin count 1, got %d", got.Summary.TwinIncomplete)
	}
	if !got.Outcomes[2].TwinIncomplete {
		t.Error("Expected twin flag preserved through the round trip")
	}
}
