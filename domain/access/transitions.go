package access

import "github.com/akeren/telecheck/internal/models"

type Action string

const (
	ActionSubmit     Action = "submit"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionRevoke     Action = "revoke"
	ActionReevaluate Action = "reevaluate"
)

// AdminActions are the roster actions exposed to the admin view.
var AdminActions = []Action{ActionApprove, ActionReject, ActionRevoke, ActionReevaluate}

func ParseAction(raw string) (Action, bool) {
	for _, a := range AdminActions {
		if string(a) == raw {
			return a, true
		}
	}
	return "", false
}

// transitions lists every legal move. Submit out of needs_entry can also land
// on approved; see Policy.InitialStatus.
var transitions = map[models.AccessStatus]map[Action]models.AccessStatus{
	models.AccessStatusNeedsEntry: {
		ActionSubmit: models.AccessStatusPendingApproval,
	},
	models.AccessStatusPendingApproval: {
		ActionApprove: models.AccessStatusApproved,
		ActionReject:  models.AccessStatusRevoked,
	},
	models.AccessStatusApproved: {
		ActionRevoke: models.AccessStatusRevoked,
	},
	models.AccessStatusRevoked: {
		ActionReevaluate: models.AccessStatusPendingApproval,
	},
}

func NextStatus(from models.AccessStatus, action Action) (models.AccessStatus, bool) {
	next, ok := transitions[from][action]
	return next, ok
}

type View string

const (
	ViewRequestAccess   View = "request_access"
	ViewPendingApproval View = "pending_approval"
	ViewRevoked         View = "revoked"
	ViewChecker         View = "checker"
	ViewAdmin           View = "admin"
)

func ViewFor(status models.AccessStatus, isAdmin bool) View {
	switch status {
	case models.AccessStatusPendingApproval:
		return ViewPendingApproval
	case models.AccessStatusRevoked:
		return ViewRevoked
	case models.AccessStatusApproved:
		if isAdmin {
			return ViewAdmin
		}
		return ViewChecker
	default:
		return ViewRequestAccess
	}
}
