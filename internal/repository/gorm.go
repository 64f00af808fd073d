package repository

import (
	"context"
	"errors"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/models"

	"gorm.io/gorm"
)

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:        &gormUsers{db: db},
		Doctors:      &gormDoctors{db: db},
		Appointments: &gormAppointments{db: db},
	}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("%s not found", what)
	}
	return apperrors.Internal("database error", err)
}

// missed explains a conditional write on the row id that matched nothing.
// The row is gone, or its status is no longer one of want. A row still in a
// wanted status was matched but left unchanged, which is not an error.
func missed(tx *gorm.DB, model interface{}, id, what string, stale func(current string) error, want ...string) error {
	var statuses []string
	if err := tx.Model(model).Where("id = ?", id).Pluck("status", &statuses).Error; err != nil {
		return apperrors.Internal("database error", err)
	}
	if len(statuses) == 0 {
		return apperrors.NotFound("%s not found", what)
	}
	for _, w := range want {
		if statuses[0] == w {
			return nil
		}
	}
	return stale(statuses[0])
}

// stateOrInternal keeps typed errors raised inside a transaction.
func stateOrInternal(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(message, err)
}

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.Internal("failed to create user", err)
	}
	return nil
}

func (r *gormUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *gormUsers) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch users", err)
	}
	return users, nil
}

func (r *gormUsers) ListByRole(ctx context.Context, role domain.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch users", err)
	}
	return users, nil
}

func (r *gormUsers) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return apperrors.Internal("failed to update user", err)
	}
	return nil
}

type gormDoctors struct {
	db *gorm.DB
}

func (r *gormDoctors) Create(ctx context.Context, profile *models.DoctorProfile) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.State("your doctor application is under review")
		}
		return apperrors.Internal("failed to create doctor profile", err)
	}
	return nil
}

func (r *gormDoctors) FindByID(ctx context.Context, id string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "doctor profile")
	}
	return &profile, nil
}

func (r *gormDoctors) FindByUserID(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "doctor profile")
	}
	return &profile, nil
}

func (r *gormDoctors) List(ctx context.Context, statuses ...domain.ApplicationStatus) ([]models.DoctorProfile, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at asc")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch doctors", err)
	}
	return profiles, nil
}

func (r *gormDoctors) Update(ctx context.Context, profile *models.DoctorProfile) error {
	if err := r.db.WithContext(ctx).Omit("User").Save(profile).Error; err != nil {
		return apperrors.Internal("failed to update doctor profile", err)
	}
	return nil
}

func (r *gormDoctors) Review(ctx context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DoctorProfile{}).
			Where("id = ? AND status = ?", profile.ID, domain.ApplicationPending).
			Updates(map[string]interface{}{"status": profile.Status})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missed(tx, &models.DoctorProfile{}, profile.ID, "doctor profile", func(current string) error {
				return apperrors.State("application was already %s", current)
			})
		}
		return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("role", ownerRole).Error
	})
	if err != nil {
		return stateOrInternal(err, "failed to update doctor status")
	}
	return nil
}

func (r *gormDoctors) Delete(ctx context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", profile.ID, profile.Status).Delete(&models.DoctorProfile{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missed(tx, &models.DoctorProfile{}, profile.ID, "doctor profile", func(current string) error {
				return apperrors.State("doctor profile is now %s, reload and try again", current)
			})
		}
		err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND status = ?", profile.UserID, domain.AppointmentPending).
			Updates(map[string]interface{}{"status": domain.AppointmentRejected}).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("role", ownerRole).Error
	})
	if err != nil {
		return stateOrInternal(err, "failed to delete doctor")
	}
	return nil
}

type gormAppointments struct {
	db *gorm.DB
}

func (r *gormAppointments) Create(ctx context.Context, appt *models.Appointment) error {
	if err := r.db.WithContext(ctx).Omit("CreatedBy", "Doctor").Create(appt).Error; err != nil {
		return apperrors.Internal("failed to create appointment", err)
	}
	return nil
}

func (r *gormAppointments) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.db.WithContext(ctx).Preload("CreatedBy").Preload("Doctor").First(&appt, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "appointment")
	}
	return &appt, nil
}

func (r *gormAppointments) list(ctx context.Context, column, userID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Doctor").
		Where(column+" = ?", userID).
		Order("date_time asc").
		Find(&appts).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch appointments", err)
	}
	return appts, nil
}

func (r *gormAppointments) ListByCreator(ctx context.Context, userID string) ([]models.Appointment, error) {
	return r.list(ctx, "created_by_id", userID)
}

func (r *gormAppointments) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.list(ctx, "doctor_id", doctorID)
}

func (r *gormAppointments) SetStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to})
	if result.Error != nil {
		return apperrors.Internal("failed to update appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return missed(db, &models.Appointment{}, id, "appointment", func(current string) error {
			return apperrors.State("cannot move appointment from %s to %s", current, to)
		}, string(to))
	}
	return nil
}

func (r *gormAppointments) Reschedule(ctx context.Context, id string, at time.Time) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, domain.AppointmentPending).
		Updates(map[string]interface{}{"date_time": at})
	if result.Error != nil {
		return apperrors.Internal("failed to update appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return missed(db, &models.Appointment{}, id, "appointment", func(current string) error {
			return apperrors.State("appointment is %s and can no longer be changed", current)
		}, string(domain.AppointmentPending))
	}
	return nil
}

func (r *gormAppointments) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	result := db.Where("id = ? AND status = ?", id, domain.AppointmentPending).Delete(&models.Appointment{})
	if result.Error != nil {
		return apperrors.Internal("failed to delete appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return missed(db, &models.Appointment{}, id, "appointment", func(current string) error {
			return apperrors.State("appointment is %s and can no longer be deleted", current)
		})
	}
	return nil
}
