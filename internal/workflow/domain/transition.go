package domain

import "fmt"

// validTransitions is the authoritative transition table. Every status allows
// its own self-loop; PUBLISHED allows nothing else.
var validTransitions = map[BookStatus][]BookStatus{
	StatusDraft: {
		StatusDraft,
		StatusSubmittedForEditing,
	},
	StatusSubmittedForEditing: {
		StatusSubmittedForEditing,
		StatusReadyForPublication,
		StatusDraft,
	},
	StatusReadyForPublication: {
		StatusReadyForPublication,
		StatusPublished,
		StatusSubmittedForEditing,
	},
	StatusPublished: {
		StatusPublished,
	},
}

// backwardEdges are the two legal transitions that move a book against the
// canonical path. They are accepted but flagged with a warning for audit.
var backwardEdges = map[BookStatus]BookStatus{
	StatusSubmittedForEditing: StatusDraft,
	StatusReadyForPublication: StatusSubmittedForEditing,
}

// TransitionResult is the outcome of validating a (previous, next) status pair.
// Reasons is non-empty exactly when OK is false. Warnings may accompany an
// accepted result for the designated backward edges; they never block.
type TransitionResult struct {
	OK       bool
	Reasons  []string
	Warnings []string
}

// ValidateTransition checks a (previous, next) status pair against the
// transition table. It is pure and deterministic: no side effects, safe to
// call repeatedly with the same inputs.
func ValidateTransition(previous, next BookStatus) TransitionResult {
	var result TransitionResult

	if !previous.IsValid() {
		result.Reasons = append(result.Reasons, fmt.Sprintf("unknown previous status %q", previous))
	}
	if !next.IsValid() {
		result.Reasons = append(result.Reasons, fmt.Sprintf("unknown next status %q", next))
	}
	if len(result.Reasons) > 0 {
		return result
	}

	allowed := false
	for _, candidate := range validTransitions[previous] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		result.Reasons = append(
			result.Reasons,
			fmt.Sprintf("illegal transition %s -> %s", previous, next),
		)
		return result
	}

	result.OK = true
	if target, ok := backwardEdges[previous]; ok && target == next {
		result.Warnings = append(
			result.Warnings,
			fmt.Sprintf("backward transition %s -> %s", previous, next),
		)
	}
	return result
}
