package reconcile

import "testing"

func TestHasMarker(t *testing.T) {
	items := []Item{
		{ID: 1, Type: ItemTypeSubHeader, Title: "Discussions", Position: 1},
		{ID: 2, Type: ItemTypePage, Title: "Assignments", Position: 2},
		{ID: 3, Type: ItemTypeSubHeader, Title: "Assignments", Position: 3},
	}

	testCases := []struct {
		title    string
		expected bool
	}{
		{"Discussions", true},
		{"Assignments", true},
		{"Labs", false},
		{"discussions", false}, // marker titles are matched exactly
	}

	for _, tc := range testCases {
		if got := HasMarker(items, tc.title); got != tc.expected {
			t.Errorf("HasMarker(%q) = %v; expected %v", tc.title, got, tc.expected)
		}
	}
}

func TestHasMarkerIgnoresContentItems(t *testing.T) {
	items := []Item{
		{ID: 1, Type: ItemTypePage, Title: "Discussions"},
	}
	if HasMarker(items, "Discussions") {
		t.Error("A content item must not satisfy a marker check")
	}
}

func TestHasLink(t *testing.T) {
	items := []Item{
		{ID: 1, Type: ItemTypeDiscussion, ContentID: 900},
		{ID: 2, Type: ItemTypeAssignment, ContentID: 901},
	}

	if !HasLink(items, ItemTypeDiscussion, 900) {
		t.Error("Expected discussion 900 to be linked")
	}
	if HasLink(items, ItemTypeDiscussion, 901) {
		t.Error("Assignment 901 must not count as a discussion link")
	}
	if HasLink(items, ItemTypeDiscussion, 902) {
		t.Error("Expected no link for unknown content id")
	}
	if HasLink(nil, ItemTypeDiscussion, 900) {
		t.Error("Expected no link in empty item list")
	}
}
