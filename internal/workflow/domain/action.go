package domain

// Action is a named workflow command requested by a user.
type Action string

// Workflow actions.
const (
	// ActionSubmit sends a draft to the editorial team.
	ActionSubmit Action = "SUBMIT"
	// ActionApprove moves an edited book into the ready-for-publication stage.
	ActionApprove Action = "APPROVE"
	// ActionReject sends a book one step backwards: a reviewed book returns to
	// editing, a book in editing returns to the author as a draft.
	ActionReject Action = "REJECT"
	// ActionPublish releases a reviewed book.
	ActionPublish Action = "PUBLISH"

	// ActionCreate marks the initial creation history entry. It is not a
	// transition action and cannot be requested through the workflow API.
	ActionCreate Action = "CREATE"
)

// IsValid reports whether the action is one of the known values.
func (a Action) IsValid() bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionPublish:
		return true
	}
	return false
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// actionTargets maps (action, current status) to the target status the action
// drives the book into. Pairs absent from this table mean the action does not
// apply to the current status and must be rejected.
var actionTargets = map[Action]map[BookStatus]BookStatus{
	ActionSubmit: {
		StatusDraft: StatusSubmittedForEditing,
	},
	ActionApprove: {
		StatusSubmittedForEditing: StatusReadyForPublication,
	},
	ActionReject: {
		StatusReadyForPublication: StatusSubmittedForEditing,
		StatusSubmittedForEditing: StatusDraft,
	},
	ActionPublish: {
		StatusReadyForPublication: StatusPublished,
	},
}

// TargetStatus returns the status the action drives a book into from the given
// current status. The second return value is false when the action does not
// apply to that status.
func (a Action) TargetStatus(current BookStatus) (BookStatus, bool) {
	targets, ok := actionTargets[a]
	if !ok {
		return "", false
	}
	target, ok := targets[current]
	return target, ok
}

// NominalTarget returns the status the action aims for regardless of the
// current status. A book already at the nominal target may re-issue the
// action idempotently; for any other inapplicable status the nominal target
// names the pair the caller asked for in the rejection.
func (a Action) NominalTarget() BookStatus {
	switch a {
	case ActionSubmit:
		return StatusSubmittedForEditing
	case ActionApprove:
		return StatusReadyForPublication
	case ActionReject:
		return StatusSubmittedForEditing
	case ActionPublish:
		return StatusPublished
	}
	return ""
}
