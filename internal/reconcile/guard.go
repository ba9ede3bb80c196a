package reconcile

// HasMarker reports whether a structural SubHeader item with exactly that
// title already exists among a module's items. Pure predicate over a
// previously fetched list; callers re-fetch after mutations.
func HasMarker(items []Item, title string) bool {
	for _, it := range items {
		if it.Type == ItemTypeSubHeader && it.Title == title {
			return true
		}
	}
	return false
}

// HasLink reports whether an item of the given type referencing contentID
// is already present, e.g. a discussion already added to a module.
func HasLink(items []Item, itemType string, contentID int) bool {
	for _, it := range items {
		if it.Type == itemType && it.ContentID == contentID {
			return true
		}
	}
	return false
}
