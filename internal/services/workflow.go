package services

import "github.com/cmcs/claimserver/types"

// Action is a workflow operation requested against a claim.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionMarkPaid Action = "mark-paid"
)

type transitionKey struct {
	current int
	action  Action
	role    string
}

// transitions is the complete workflow: coordinators review submitted
// claims, managers review everything a coordinator has decided and
// settle their own approvals. Any (current, action, role) triple not
// listed here is rejected.
var transitions = map[transitionKey]int{
	{types.StatusSubmitted, ActionApprove, types.RoleCoordinator}:       types.StatusCoordinatorApproved,
	{types.StatusSubmitted, ActionReject, types.RoleCoordinator}:        types.StatusCoordinatorRejected,
	{types.StatusCoordinatorApproved, ActionApprove, types.RoleManager}: types.StatusManagerApproved,
	{types.StatusCoordinatorApproved, ActionReject, types.RoleManager}:  types.StatusManagerRejected,
	{types.StatusCoordinatorRejected, ActionApprove, types.RoleManager}: types.StatusManagerApproved,
	{types.StatusCoordinatorRejected, ActionReject, types.RoleManager}:  types.StatusManagerRejected,
	{types.StatusManagerApproved, ActionMarkPaid, types.RoleManager}:    types.StatusPaid,
}

// NextStatus resolves the status a claim moves to when role performs
// action. ErrRoleNotAllowed is returned when the role can never perform
// the action, ErrInvalidTransition when the claim's current status does
// not permit it.
func NextStatus(current int, action Action, role string) (int, error) {
	if next, ok := transitions[transitionKey{current, action, role}]; ok {
		return next, nil
	}
	for key := range transitions {
		if key.action == action && key.role == role {
			return 0, ErrInvalidTransition
		}
	}
	return 0, ErrRoleNotAllowed
}

// Status sets backing the role dashboards. Together the three views
// partition all six statuses.
var (
	CoordinatorPendingStatuses = []int{types.StatusSubmitted}
	ManagerPendingStatuses     = []int{types.StatusCoordinatorApproved, types.StatusCoordinatorRejected}
	PastStatuses               = []int{types.StatusManagerApproved, types.StatusManagerRejected, types.StatusPaid}
)
