package domain

import (
	"strings"
	"time"

	"healthcare-dashboard/internal/apperrors"
)

// AppointmentStatus represents the lifecycle stage of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentAccepted  AppointmentStatus = "Accepted"
	AppointmentRejected  AppointmentStatus = "Rejected"
	AppointmentCompleted AppointmentStatus = "Completed"
)

// appointmentTransitions lists the statuses reachable from each status.
// Rejected and Completed are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:  {AppointmentAccepted, AppointmentRejected},
	AppointmentAccepted: {AppointmentCompleted},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentAccepted, AppointmentRejected, AppointmentCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

// NextStatuses returns the statuses a doctor may move an appointment to.
func NextStatuses(current AppointmentStatus) []AppointmentStatus {
	next := appointmentTransitions[current]
	out := make([]AppointmentStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to AppointmentStatus) bool {
	for _, s := range appointmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AppointmentRef is the subset of an appointment the rules need.
type AppointmentRef struct {
	CreatedBy string
	DoctorID  string
	Status    AppointmentStatus
}

// CanCreateAppointment reports whether the role may book appointments.
// Doctors and admins see the page in their menu but only patients book.
func CanCreateAppointment(role Role) bool {
	return role == RoleUser
}

// CanEditAppointment reports whether actor may reschedule appt.
func CanEditAppointment(actor Actor, appt AppointmentRef) bool {
	return actor.ID != "" && actor.ID == appt.CreatedBy && appt.Status == AppointmentPending
}

// CanDeleteAppointment follows the same rule as rescheduling.
func CanDeleteAppointment(actor Actor, appt AppointmentRef) bool {
	return CanEditAppointment(actor, appt)
}

// CanChangeStatus reports whether actor is the doctor referenced by appt.
func CanChangeStatus(actor Actor, appt AppointmentRef) bool {
	return actor.Role == RoleDoctor && actor.ID != "" && actor.ID == appt.DoctorID
}

// CheckCreate validates a booking request.
func CheckCreate(actor Actor, doctorID string, at time.Time, now time.Time) error {
	if doctorID == "" || at.IsZero() {
		return apperrors.Validation("All fields are required")
	}
	if !CanCreateAppointment(actor.Role) {
		return apperrors.Permission("only patients can book appointments")
	}
	if doctorID == actor.ID {
		return apperrors.Permission("cannot book an appointment with yourself")
	}
	if !at.After(now) {
		return apperrors.Validation("appointment date must be in the future")
	}
	return nil
}

// CheckReschedule validates a date-time change by actor.
func CheckReschedule(actor Actor, appt AppointmentRef, at time.Time, now time.Time) error {
	if at.IsZero() {
		return apperrors.Validation("dateTime is required")
	}
	if actor.ID != appt.CreatedBy {
		return apperrors.Permission("only the patient who booked this appointment can change it")
	}
	if appt.Status != AppointmentPending {
		return apperrors.State("appointment is %s and can no longer be changed", appt.Status)
	}
	if !at.After(now) {
		return apperrors.Validation("appointment date must be in the future")
	}
	return nil
}

// CheckDelete validates a deletion by actor.
func CheckDelete(actor Actor, appt AppointmentRef) error {
	if actor.ID != appt.CreatedBy {
		return apperrors.Permission("only the patient who booked this appointment can delete it")
	}
	if appt.Status != AppointmentPending {
		return apperrors.State("appointment is %s and can no longer be deleted", appt.Status)
	}
	return nil
}

// CheckStatusChange validates a status change requested by actor.
func CheckStatusChange(actor Actor, appt AppointmentRef, to AppointmentStatus) error {
	if !to.Valid() {
		return apperrors.Validation("invalid status %q", to)
	}
	if !CanChangeStatus(actor, appt) {
		return apperrors.Permission("only the assigned doctor can change this appointment's status")
	}
	if !CanTransition(appt.Status, to) {
		return apperrors.State("cannot move appointment from %s to %s", appt.Status, to)
	}
	return nil
}

// dateTimeLayouts are accepted for appointment times, most precise first.
// The last two are what an HTML datetime-local input submits.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDateTime parses an appointment time. Times without a zone are read
// in the local zone.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("dateTime %q is not a valid date-time", s)
}
