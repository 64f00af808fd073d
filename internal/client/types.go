package client

import (
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"

	"github.com/go-playground/validator/v10"
)

// User is an account as returned by the API.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	ContactNumber string      `json:"contactNumber,omitempty"`
	Address       string      `json:"address,omitempty"`
	ProfileImage  string      `json:"profileImage,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Actor returns the identity the permission rules look at.
func (u *User) Actor() domain.Actor {
	if u == nil {
		return domain.Actor{}
	}
	return domain.Actor{ID: u.ID, Role: u.Role}
}

// DoctorProfile is a doctor application. User is nil when the server did
// not include the owner.
type DoctorProfile struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"userId"`
	Specialist string                   `json:"specialist"`
	Fees       float64                  `json:"fees"`
	Status     domain.ApplicationStatus `json:"status"`
	User       *User                    `json:"user,omitempty"`
	CreatedAt  time.Time                `json:"createdAt"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

func (d DoctorProfile) DoctorName() string {
	if d.User == nil {
		return ""
	}
	return d.User.Name
}

func (d DoctorProfile) Specialty() string { return d.Specialist }

func (d DoctorProfile) Fee() float64 { return d.Fees }

func (d DoctorProfile) ApplicationStatus() domain.ApplicationStatus { return d.Status }

// Appointment is a booking as returned by the API. CreatedBy and Doctor are
// nil when the server did not include them.
type Appointment struct {
	ID          string                   `json:"id"`
	CreatedByID string                   `json:"createdById"`
	DoctorID    string                   `json:"doctorId"`
	DateTime    time.Time                `json:"dateTime"`
	Status      domain.AppointmentStatus `json:"status"`
	CreatedBy   *User                    `json:"createdBy,omitempty"`
	Doctor      *User                    `json:"doctor,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// DoctorName returns the assigned doctor's name, or "" when absent.
func (a Appointment) DoctorName() string {
	if a.Doctor == nil {
		return ""
	}
	return a.Doctor.Name
}

// PatientName returns the booking patient's name, or "" when absent.
func (a Appointment) PatientName() string {
	if a.CreatedBy == nil {
		return ""
	}
	return a.CreatedBy.Name
}

// Ref returns the fields the lifecycle rules look at.
func (a Appointment) Ref() domain.AppointmentRef {
	return domain.AppointmentRef{CreatedBy: a.CreatedByID, DoctorID: a.DoctorID, Status: a.Status}
}

// Credentials log a user in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Registration creates an account.
type Registration struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	Address       string `json:"address,omitempty"`
}

// ProfileUpdate edits the caller's profile. Empty fields are unchanged.
type ProfileUpdate struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	ContactNumber string `json:"contactNumber,omitempty"`
	Address       string `json:"address,omitempty"`
}

// DoctorApplication applies for the Doctor role.
type DoctorApplication struct {
	Specialist string  `json:"specialist" validate:"required"`
	Fees       float64 `json:"fees" validate:"gte=0"`
}

// DoctorUpdate edits the caller's doctor profile. Nil or empty fields are
// unchanged.
type DoctorUpdate struct {
	Specialist string   `json:"specialist,omitempty"`
	Fees       *float64 `json:"fees,omitempty" validate:"omitempty,gte=0"`
}

// NewAppointment books an appointment.
type NewAppointment struct {
	DoctorID string    `json:"doctorId" validate:"required"`
	DateTime time.Time `json:"dateTime" validate:"required"`
}

// DoctorQuery narrows GetAllDoctors. The zero value lists everything the
// caller may see.
type DoctorQuery struct {
	Query     string
	Specialty string
	Sort      domain.SortKey
}

var validate = validator.New()

// Validate checks a request's validate tags and reports the first failure
// as a validation error.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperrors.Validation("%s", err.Error())
	}
	e := errs[0]
	switch e.Tag() {
	case "required":
		return apperrors.Validation("%s is required", e.Field())
	case "email":
		return apperrors.Validation("%s must be a valid email", e.Field())
	case "min":
		return apperrors.Validation("%s must be at least %s characters", e.Field(), e.Param())
	case "gte":
		return apperrors.Validation("%s must be a non-negative number", e.Field())
	default:
		return apperrors.Validation("%s is invalid", e.Field())
	}
}
