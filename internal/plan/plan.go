// Package plan loads declarative reconciliation plans. A plan names the
// chapter schedule and the targets to reconcile; the engine in
// internal/reconcile consumes the converted forms.
package plan

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"canvas-reconcile/internal/reconcile"
)

// Document is the on-disk plan format.
type Document struct {
	Schedule Schedule     `yaml:"schedule"`
	Targets  []TargetSpec `yaml:"targets"`
}

// Schedule holds the chapter rule table. Year and Timezone may be left
// empty and filled from configuration at resolve time.
type Schedule struct {
	Year     int                  `yaml:"year,omitempty"`
	Timezone string               `yaml:"timezone,omitempty"`
	Chapters map[int]ChapterDates `yaml:"chapters"`
}

// ChapterDates are "M/D" calendar dates for one chapter. Close is
// optional and defaults to Due.
type ChapterDates struct {
	Available string `yaml:"available"`
	Due       string `yaml:"due"`
	Close     string `yaml:"close,omitempty"`
}

// TargetSpec is one desired-state instruction as written in the plan.
type TargetSpec struct {
	Kind           string       `yaml:"kind"`
	Match          MatchSpec    `yaml:"match"`
	Name           string       `yaml:"name,omitempty"`
	Body           string       `yaml:"body,omitempty"`
	Chapter        int          `yaml:"chapter,omitempty"`
	Markers        []MarkerSpec `yaml:"markers,omitempty"`
	LinkDiscussion bool         `yaml:"link_discussion,omitempty"`
}

// MatchSpec names the identity rule for a target.
type MatchSpec struct {
	Rule  string `yaml:"rule"`
	Value string `yaml:"value"`
}

// MarkerSpec is a structural heading that must exist inside a module.
type MarkerSpec struct {
	Title    string `yaml:"title"`
	Position int    `yaml:"position"`
}

// Load reads and parses a plan file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	return &d, nil
}

// Resolver builds the schedule resolver from the plan's rule table.
// fallbackYear and fallbackZone apply when the plan omits them.
func (d *Document) Resolver(fallbackYear int, fallbackZone string) (*reconcile.Resolver, error) {
	year := d.Schedule.Year
	if year == 0 {
		year = fallbackYear
	}
	zone := d.Schedule.Timezone
	if zone == "" {
		zone = fallbackZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", zone, err)
	}

	rules := make(map[int]reconcile.Rule, len(d.Schedule.Chapters))
	for ch, dates := range d.Schedule.Chapters {
		if ch < 1 {
			return nil, fmt.Errorf("chapter %d: chapter numbers start at 1", ch)
		}
		avail, err := reconcile.ParseMonthDay(dates.Available)
		if err != nil {
			return nil, fmt.Errorf("chapter %d available: %w", ch, err)
		}
		due, err := reconcile.ParseMonthDay(dates.Due)
		if err != nil {
			return nil, fmt.Errorf("chapter %d due: %w", ch, err)
		}
		rule := reconcile.Rule{Available: avail, Due: due}
		if dates.Close != "" {
			closeAt, err := reconcile.ParseMonthDay(dates.Close)
			if err != nil {
				return nil, fmt.Errorf("chapter %d close: %w", ch, err)
			}
			rule.Close = &closeAt
		}
		rules[ch] = rule
	}

	return &reconcile.Resolver{Year: year, Location: loc, Rules: rules}, nil
}

// ReconcileTargets converts the plan's targets into engine form,
// validating kinds and match rules.
func (d *Document) ReconcileTargets() ([]reconcile.Target, error) {
	out := make([]reconcile.Target, 0, len(d.Targets))
	for i, t := range d.Targets {
		kind, err := parseKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		rule, err := parseRule(t.Match.Rule)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		if t.Match.Value == "" {
			return nil, fmt.Errorf("target %d: match value is required", i)
		}
		if t.Body != "" && kind != reconcile.KindPage {
			return nil, fmt.Errorf("target %d: body only applies to pages", i)
		}

		markers := make([]reconcile.Marker, 0, len(t.Markers))
		for _, m := range t.Markers {
			if m.Title == "" {
				return nil, fmt.Errorf("target %d: marker title is required", i)
			}
			markers = append(markers, reconcile.Marker{Title: m.Title, Position: m.Position})
		}

		out = append(out, reconcile.Target{
			Kind:           kind,
			Rule:           rule,
			Value:          t.Match.Value,
			DesiredName:    t.Name,
			DesiredBody:    t.Body,
			Chapter:        t.Chapter,
			Markers:        markers,
			LinkDiscussion: t.LinkDiscussion,
		})
	}
	return out, nil
}

func parseKind(s string) (reconcile.Kind, error) {
	switch s {
	case "module":
		return reconcile.KindModule, nil
	case "page":
		return reconcile.KindPage, nil
	case "assignment":
		return reconcile.KindAssignment, nil
	case "discussion", "discussion_topic":
		return reconcile.KindDiscussion, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

func parseRule(s string) (reconcile.MatchRule, error) {
	switch s {
	case "exact-id":
		return reconcile.RuleExact, nil
	case "prefix":
		return reconcile.RulePrefix, nil
	case "contains":
		return reconcile.RuleContains, nil
	default:
		return "", fmt.Errorf("unknown match rule %q", s)
	}
}

// Defaults returns the standing semester plan: the spring chapter table
// and the module scaffolding targets. Module 1 keeps its orientation
// layout, so scaffolding starts at module 2.
func Defaults() *Document {
	d := &Document{
		Schedule: Schedule{
			Chapters: map[int]ChapterDates{
				1:  {Available: "1/12", Due: "1/18"},
				2:  {Available: "1/19", Due: "1/25"},
				3:  {Available: "1/26", Due: "2/1"},
				4:  {Available: "2/2", Due: "2/8"},
				5:  {Available: "2/9", Due: "2/15"},
				6:  {Available: "2/16", Due: "3/1"},
				7:  {Available: "3/2", Due: "3/15"},
				8:  {Available: "3/16", Due: "3/22"},
				9:  {Available: "3/23", Due: "4/5"},
				10: {Available: "4/6", Due: "4/19"},
			},
		},
	}
	for n := 2; n <= 10; n++ {
		d.Targets = append(d.Targets, TargetSpec{
			Kind:    "module",
			Match:   MatchSpec{Rule: "contains", Value: fmt.Sprintf("Module %d", n)},
			Chapter: n,
			Markers: []MarkerSpec{
				{Title: "Discussions", Position: 1},
				{Title: "Assignments", Position: 3},
			},
			LinkDiscussion: true,
		})
	}
	return d
}
