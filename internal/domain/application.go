package domain

import (
	"strings"

	"healthcare-dashboard/internal/apperrors"
)

// ApplicationStatus is the admin-reviewed state of a doctor application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Decided reports whether the application has left Pending.
func (s ApplicationStatus) Decided() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// CanReviewDoctor reports whether the role may accept, reject or remove
// doctor applications.
func CanReviewDoctor(role Role) bool {
	return role == RoleAdmin
}

// CanApply reports whether a user with the given existing application (nil
// when there is none) may submit a new one. An existing profile of any
// status blocks a new one until an admin removes it.
func CanApply(role Role, existing *ApplicationStatus) bool {
	return role == RoleUser && existing == nil
}

// CheckApply validates a doctor application.
func CheckApply(actor Actor, existing *ApplicationStatus, specialist string, fees float64) error {
	if strings.TrimSpace(specialist) == "" {
		return apperrors.Validation("specialist is required")
	}
	if fees < 0 {
		return apperrors.Validation("fees must be a non-negative number")
	}
	if existing != nil {
		if *existing == ApplicationPending {
			return apperrors.State("your doctor application is under review")
		}
		return apperrors.State("you already have a %s doctor application", strings.ToLower(string(*existing)))
	}
	if actor.Role != RoleUser {
		return apperrors.Permission("only users can apply to become a doctor")
	}
	return nil
}

// CheckReview validates an admin decision on an application.
func CheckReview(actor Actor, current, decision ApplicationStatus) error {
	if !CanReviewDoctor(actor.Role) {
		return apperrors.Permission("only admins can review doctor applications")
	}
	if !decision.Decided() {
		return apperrors.Validation("decision must be Accepted or Rejected")
	}
	if current != ApplicationPending {
		return apperrors.State("application was already %s", current)
	}
	return nil
}

// CheckRemoval validates deleting a reviewed profile.
func CheckRemoval(actor Actor, current ApplicationStatus) error {
	if !CanReviewDoctor(actor.Role) {
		return apperrors.Permission("only admins can remove doctors")
	}
	if !current.Decided() {
		return apperrors.State("application must be reviewed before it can be removed")
	}
	return nil
}
