package reconcile

import (
	"fmt"
	"strings"
)

// Status is the terminal state of one target.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusFailed  Status = "failed"
)

// Outcome is the per-target result of a run. Produced once per target,
// reported in target order, never persisted by the engine.
type Outcome struct {
	Kind  Kind      `json:"kind"`
	Rule  MatchRule `json:"rule,omitempty"`
	Value string    `json:"value,omitempty"`

	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
	EntityID   int    `json:"entityId,omitempty"`
	EntityName string `json:"entityName,omitempty"`

	FieldsChanged  []string `json:"fieldsChanged,omitempty"`
	TwinIncomplete bool     `json:"twinIncomplete,omitempty"`

	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// Summary counts outcomes by terminal state.
type Summary struct {
	Skipped        int
	Created        int
	Updated        int
	Failed         int
	TwinIncomplete int
}

func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusSkipped:
			s.Skipped++
		case StatusCreated:
			s.Created++
		case StatusUpdated:
			s.Updated++
		case StatusFailed:
			s.Failed++
		}
		if o.TwinIncomplete {
			s.TwinIncomplete++
		}
	}
	return s
}

func (s Summary) String() string {
	out := fmt.Sprintf("created=%d updated=%d skipped=%d failed=%d", s.Created, s.Updated, s.Skipped, s.Failed)
	if s.TwinIncomplete > 0 {
		out += fmt.Sprintf(" twin_incomplete=%d", s.TwinIncomplete)
	}
	return out
}

// Describe renders a single outcome line for the run report.
func (o Outcome) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %q", o.Status, o.Kind, o.Value)
	if o.EntityName != "" {
		fmt.Fprintf(&b, " -> %q (id=%d)", o.EntityName, o.EntityID)
	}
	if len(o.FieldsChanged) > 0 {
		fmt.Fprintf(&b, " fields=%s", strings.Join(o.FieldsChanged, ","))
	}
	if o.TwinIncomplete {
		b.WriteString(" twin_incomplete=true")
	}
	if o.Reason != "" {
		fmt.Fprintf(&b, " (%s)", o.Reason)
	}
	if o.Error != "" {
		fmt.Fprintf(&b, " error=%s", o.Error)
	}
	return b.String()
}
