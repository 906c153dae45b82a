// Package grading defines the correctness rules shared by the authoritative
// grading path and the practice-mode preview path. Both must evaluate an
// answer identically, so everything here is deterministic and side-effect
// free: no locale-dependent casing, no numeric coercion, no errors.
package grading

import "strings"

// Question types understood by the rules. These are the wire names used by
// the question bank and the grade endpoint.
const (
	TypeMCQ       = "mcq"
	TypeMulti     = "multi"
	TypeTrueFalse = "truefalse"
	TypeShort     = "short"
	TypeCloze     = "cloze"
)

// checker reports whether candidate matches canonical for one question type.
// Both values arrive as decoded JSON: a string, a []string, a []any of
// strings, or nil.
type checker func(canonical, candidate any) bool

var checkers = map[string]checker{
	TypeMCQ:       checkText,
	TypeTrueFalse: checkText,
	TypeShort:     checkText,
	TypeCloze:     checkText,
	TypeMulti:     checkMulti,
}

// IsCorrect reports whether candidate is a correct answer for a question of
// the given type with the given canonical answer. Unanswered candidates
// (nil, empty string, empty slice) are always incorrect and never compared.
// Unknown types are always incorrect.
func IsCorrect(qtype string, canonical, candidate any) bool {
	if !Answered(candidate) {
		return false
	}
	ck, ok := checkers[qtype]
	if !ok {
		return false
	}
	return ck(canonical, candidate)
}

// Answered reports whether candidate counts as an answer at all. Absence,
// nil, an empty or whitespace-only string, and an empty slice all mean
// "unanswered".
func Answered(candidate any) bool {
	switch v := candidate.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// Normalize maps a free-form answer value to its comparison form: leading
// and trailing whitespace trimmed, lower-cased.
func Normalize(v any) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

func checkText(canonical, candidate any) bool {
	c := Normalize(canonical)
	if c == "" {
		return false
	}
	return Normalize(candidate) == c
}

// checkMulti compares the two selections as unordered sets of normalized
// elements. Duplicates in the candidate collapse, so they can neither
// inflate nor break correctness.
func checkMulti(canonical, candidate any) bool {
	want := toSet(canonical)
	got := toSet(candidate)
	if len(want) == 0 || len(want) != len(got) {
		return false
	}
	for k := range got {
		if _, ok := want[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(v any) map[string]struct{} {
	var elems []any
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			elems = append(elems, s)
		}
	case []any:
		elems = t
	case string:
		// A lone string is treated as a one-element selection.
		elems = []any{t}
	default:
		return nil
	}
	set := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if n := Normalize(e); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
