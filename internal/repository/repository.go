package repository

import (
	"context"
	"time"

	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// DoctorRepository persists doctor profiles. Reads preload the owning user.
type DoctorRepository interface {
	Create(ctx context.Context, profile *models.DoctorProfile) error
	FindByID(ctx context.Context, id string) (*models.DoctorProfile, error)
	FindByUserID(ctx context.Context, userID string) (*models.DoctorProfile, error)
	// List returns profiles with one of statuses, or all profiles when none given.
	List(ctx context.Context, statuses ...domain.ApplicationStatus) ([]models.DoctorProfile, error)
	Update(ctx context.Context, profile *models.DoctorProfile) error
	// Review moves a Pending profile to profile.Status and sets the owner's
	// role in one step. A profile that is no longer Pending gives a State error.
	Review(ctx context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error
	// Delete removes the profile if it still has profile.Status, sets the
	// owner's role and rejects the Pending appointments booked with the owner,
	// all in one step.
	Delete(ctx context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error
}

// AppointmentRepository persists appointments. Reads preload both users and
// are ordered by date-time ascending.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByCreator(ctx context.Context, userID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	// SetStatus moves the appointment from one status to another. It gives a
	// State error when the stored status is no longer from.
	SetStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) error
	// Reschedule changes the date-time of a Pending appointment.
	Reschedule(ctx context.Context, id string, at time.Time) error
	// Delete removes a Pending appointment.
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories the API needs.
type Store struct {
	Users        UserRepository
	Doctors      DoctorRepository
	Appointments AppointmentRepository
}
