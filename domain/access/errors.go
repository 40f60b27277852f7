package access

import (
	"errors"

	apperrors "github.com/akeren/telecheck/pkg/errors"
)

// Sentinel errors for the access domain.
var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrDomainNotAllowed  = errors.New("email domain is not allowed")
	ErrNotAdmin          = errors.New("acting session is not the approved admin")
	ErrAccessNotApproved = errors.New("session is not approved")
	ErrNoCurrentUser     = errors.New("session has no current email")
	ErrRecordNotFound    = errors.New("no roster record for email")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrLastAdmin         = errors.New("cannot revoke the only approved admin")
	ErrMalformedRoster   = errors.New("persisted roster is malformed")
	ErrUnsupportedAction = errors.New("unsupported roster action")
	ErrReservedEmail     = errors.New("email is a case variant of the admin address")
)

func NewInvalidEmailError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("Please enter a valid email address.", ErrInvalidEmail).
		WithTitle("Invalid Email")
}

func NewDomainNotAllowedError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("Access is limited to approved email providers.", ErrDomainNotAllowed).
		WithTitle("Email Not Allowed")
}

func NewNotAdminError() *apperrors.AppError {
	return apperrors.NewForbiddenError("Only the administrator can manage access requests.", ErrNotAdmin).
		WithTitle("Admin Only")
}

func NewAccessNotApprovedError() *apperrors.AppError {
	return apperrors.NewForbiddenError("Your access has not been approved yet.", ErrAccessNotApproved).
		WithTitle("Access Required")
}

func NewNoCurrentUserError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("Enter your email before continuing.", ErrNoCurrentUser).
		WithTitle("Email Required")
}

func NewRecordNotFoundError() *apperrors.AppError {
	return apperrors.NewNotFoundError("No access request exists for that email.", ErrRecordNotFound).
		WithTitle("User Not Found")
}

func NewInvalidTransitionError() *apperrors.AppError {
	return apperrors.NewConflictError("That action is not available for this user's current status.", ErrInvalidTransition).
		WithTitle("Action Not Allowed")
}

func NewLastAdminError() *apperrors.AppError {
	return apperrors.NewConflictError("The last approved admin cannot be revoked.", ErrLastAdmin).
		WithTitle("Action Not Allowed")
}

func NewUnsupportedActionError() *apperrors.AppError {
	return apperrors.NewNotFoundError("Unknown roster action.", ErrUnsupportedAction)
}

func NewReservedEmailError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("That email address is reserved. Enter it exactly as registered.", ErrReservedEmail).
		WithTitle("Email Not Allowed")
}
