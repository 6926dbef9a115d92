package services

import (
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
)

// transitionKey is the dispatch key for an approval: where the request is,
// who is acting and what kind of movement it is. Rejections and the admin
// override are handled before the table lookup, so the table only holds
// the regular approval chain.
type transitionKey struct {
	status  string
	role    string
	reqType string
}

// The two-step chain: a borrow needs the storekeeper and then the base
// manager; a return is final at the storekeeper. The manager never acts on
// returns, so a RETURN can never legitimately sit in PENDING_MANAGER.
var approvalTransitions = map[transitionKey]string{
	{constants.StatusPending, constants.RoleStorekeeper, constants.RequestTypeBorrow}:        constants.StatusPendingManager,
	{constants.StatusPending, constants.RoleStorekeeper, constants.RequestTypeReturn}:        constants.StatusApproved,
	{constants.StatusPendingManager, constants.RoleBaseManager, constants.RequestTypeBorrow}: constants.StatusApproved,
}

// NextStatus decides the transition for one approval step.
//
// Deciding on a terminal request is an error, never a silent re-apply: the
// caller must treat ErrRequestAlreadyFinal as a hard stop so inventory
// side effects cannot run twice.
func NextStatus(current, role, reqType string, approve bool) (string, error) {
	if constants.IsTerminalStatus(current) {
		return "", apperrors.ErrRequestAlreadyFinal
	}

	if !approve {
		return constants.StatusRejected, nil
	}

	// Admin override: approves from any non-terminal state, bypassing the
	// remaining chain.
	if role == constants.RoleAdmin {
		return constants.StatusApproved, nil
	}

	if next, ok := approvalTransitions[transitionKey{status: current, role: role, reqType: reqType}]; ok {
		return next, nil
	}

	return "", apperrors.ErrInvalidTransition
}
