package reconcile

import "strings"

// MatchRule selects how a target identity maps to a remote entity.
type MatchRule string

const (
	RuleExact    MatchRule = "exact-id"
	RulePrefix   MatchRule = "prefix"
	RuleContains MatchRule = "contains"
)

// MatchExact returns the entity with the given id, or ErrNotFound.
func MatchExact(col []Entity, id int) (Entity, error) {
	for _, e := range col {
		if e.ID == id {
			return e, nil
		}
	}
	return Entity{}, ErrNotFound
}

// MatchPrefix returns the entity whose display name starts with prefix.
// With allowFirst=false (the default policy) more than one candidate is an
// AmbiguousMatchError; with allowFirst=true the first in reader order wins,
// matching the legacy behavior operators may rely on.
func MatchPrefix(col []Entity, prefix string, allowFirst bool) (Entity, error) {
	return matchBy(col, RulePrefix, prefix, allowFirst, func(name string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// MatchContains is MatchPrefix with case-insensitive substring semantics.
func MatchContains(col []Entity, keyword string, allowFirst bool) (Entity, error) {
	lower := strings.ToLower(keyword)
	return matchBy(col, RuleContains, keyword, allowFirst, func(name string) bool {
		return strings.Contains(strings.ToLower(name), lower)
	})
}

func matchBy(col []Entity, rule MatchRule, value string, allowFirst bool, pred func(string) bool) (Entity, error) {
	var found []Entity
	for _, e := range col {
		if pred(e.Name) {
			if allowFirst {
				return e, nil
			}
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return Entity{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return Entity{}, &AmbiguousMatchError{Rule: rule, Value: value, Candidates: found}
	}
}
