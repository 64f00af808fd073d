package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/models"

	"github.com/google/uuid"
)

// memoryDB keeps every table behind one lock so cross-table updates are atomic.
type memoryDB struct {
	mu           sync.RWMutex
	users        map[string]models.User
	doctors      map[string]models.DoctorProfile
	appointments map[string]models.Appointment
	now          func() time.Time
	last         time.Time
}

// NewMemoryStore returns a Store that keeps everything in process memory.
// Data is lost on restart.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:        make(map[string]models.User),
		doctors:      make(map[string]models.DoctorProfile),
		appointments: make(map[string]models.Appointment),
		now:          time.Now,
	}
	return &Store{
		Users:        &memoryUsers{db: db},
		Doctors:      &memoryDoctors{db: db},
		Appointments: &memoryAppointments{db: db},
	}
}

// stamp sets timestamps; they strictly increase so listings have a stable order.
func (db *memoryDB) stamp(base *models.BaseModel, created bool) {
	now := db.now()
	if !now.After(db.last) {
		now = db.last.Add(time.Nanosecond)
	}
	db.last = now
	if created {
		if base.ID == "" {
			base.ID = uuid.New().String()
		}
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// userRef returns a detached copy of a stored user, or nil.
func (db *memoryDB) userRef(id string) *models.User {
	u, ok := db.users[id]
	if !ok {
		return nil
	}
	return &u
}

type memoryUsers struct {
	db *memoryDB
}

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.Validation("User with this email already exists")
		}
	}
	r.db.stamp(&user.BaseModel, true)
	r.db.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u := r.db.userRef(id); u != nil {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *memoryUsers) List(ctx context.Context) ([]models.User, error) {
	return r.ListByRole(ctx, "")
}

func (r *memoryUsers) ListByRole(_ context.Context, role domain.Role) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		if role == "" || u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryUsers) Update(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[user.ID]; !ok {
		return apperrors.NotFound("user not found")
	}
	r.db.stamp(&user.BaseModel, false)
	r.db.users[user.ID] = *user
	return nil
}

type memoryDoctors struct {
	db *memoryDB
}

func (r *memoryDoctors) withUser(p models.DoctorProfile) *models.DoctorProfile {
	p.User = r.db.userRef(p.UserID)
	return &p
}

func (r *memoryDoctors) Create(_ context.Context, profile *models.DoctorProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.doctors {
		if existing.UserID == profile.UserID {
			return apperrors.State("your doctor application is under review")
		}
	}
	r.db.stamp(&profile.BaseModel, true)
	stored := *profile
	stored.User = nil
	r.db.doctors[profile.ID] = stored
	return nil
}

func (r *memoryDoctors) FindByID(_ context.Context, id string) (*models.DoctorProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor profile not found")
	}
	return r.withUser(p), nil
}

func (r *memoryDoctors) FindByUserID(_ context.Context, userID string) (*models.DoctorProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.doctors {
		if p.UserID == userID {
			return r.withUser(p), nil
		}
	}
	return nil, apperrors.NotFound("doctor profile not found")
}

func (r *memoryDoctors) List(_ context.Context, statuses ...domain.ApplicationStatus) ([]models.DoctorProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	profiles := make([]models.DoctorProfile, 0, len(r.db.doctors))
	for _, p := range r.db.doctors {
		if len(statuses) > 0 && !containsStatus(statuses, p.Status) {
			continue
		}
		profiles = append(profiles, *r.withUser(p))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })
	return profiles, nil
}

func containsStatus(statuses []domain.ApplicationStatus, s domain.ApplicationStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (r *memoryDoctors) Update(_ context.Context, profile *models.DoctorProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.doctors[profile.ID]; !ok {
		return apperrors.NotFound("doctor profile not found")
	}
	r.db.stamp(&profile.BaseModel, false)
	stored := *profile
	stored.User = nil
	r.db.doctors[profile.ID] = stored
	return nil
}

func (r *memoryDoctors) setOwnerRole(userID string, role domain.Role) {
	if u, ok := r.db.users[userID]; ok {
		u.Role = role
		r.db.stamp(&u.BaseModel, false)
		r.db.users[userID] = u
	}
}

func (r *memoryDoctors) Review(_ context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.doctors[profile.ID]
	if !ok {
		return apperrors.NotFound("doctor profile not found")
	}
	if stored.Status != domain.ApplicationPending {
		return apperrors.State("application was already %s", stored.Status)
	}
	stored.Status = profile.Status
	r.db.stamp(&stored.BaseModel, false)
	r.db.doctors[profile.ID] = stored
	r.setOwnerRole(stored.UserID, ownerRole)
	return nil
}

func (r *memoryDoctors) Delete(_ context.Context, profile *models.DoctorProfile, ownerRole domain.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.doctors[profile.ID]
	if !ok {
		return apperrors.NotFound("doctor profile not found")
	}
	if stored.Status != profile.Status {
		return apperrors.State("doctor profile is now %s, reload and try again", stored.Status)
	}
	delete(r.db.doctors, profile.ID)
	for id, a := range r.db.appointments {
		if a.DoctorID == stored.UserID && a.Status == domain.AppointmentPending {
			a.Status = domain.AppointmentRejected
			r.db.stamp(&a.BaseModel, false)
			r.db.appointments[id] = a
		}
	}
	r.setOwnerRole(stored.UserID, ownerRole)
	return nil
}

type memoryAppointments struct {
	db *memoryDB
}

func (r *memoryAppointments) withUsers(a models.Appointment) models.Appointment {
	a.CreatedBy = r.db.userRef(a.CreatedByID)
	a.Doctor = r.db.userRef(a.DoctorID)
	return a
}

func (r *memoryAppointments) Create(_ context.Context, appt *models.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.stamp(&appt.BaseModel, true)
	stored := *appt
	stored.CreatedBy, stored.Doctor = nil, nil
	r.db.appointments[appt.ID] = stored
	return nil
}

func (r *memoryAppointments) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment not found")
	}
	found := r.withUsers(a)
	return &found, nil
}

func (r *memoryAppointments) list(match func(models.Appointment) bool) []models.Appointment {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, a := range r.db.appointments {
		if match(a) {
			out = append(out, r.withUsers(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out
}

func (r *memoryAppointments) ListByCreator(_ context.Context, userID string) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment) bool { return a.CreatedByID == userID }), nil
}

func (r *memoryAppointments) ListByDoctor(_ context.Context, doctorID string) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

// change applies edit to the stored appointment id while the lock is held.
func (r *memoryAppointments) change(id string, edit func(a *models.Appointment) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment not found")
	}
	if err := edit(&a); err != nil {
		return err
	}
	r.db.stamp(&a.BaseModel, false)
	r.db.appointments[id] = a
	return nil
}

func (r *memoryAppointments) SetStatus(_ context.Context, id string, from, to domain.AppointmentStatus) error {
	return r.change(id, func(a *models.Appointment) error {
		if a.Status != from {
			return apperrors.State("cannot move appointment from %s to %s", a.Status, to)
		}
		a.Status = to
		return nil
	})
}

func (r *memoryAppointments) Reschedule(_ context.Context, id string, at time.Time) error {
	return r.change(id, func(a *models.Appointment) error {
		if a.Status != domain.AppointmentPending {
			return apperrors.State("appointment is %s and can no longer be changed", a.Status)
		}
		a.DateTime = at
		return nil
	})
}

func (r *memoryAppointments) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment not found")
	}
	if a.Status != domain.AppointmentPending {
		return apperrors.State("appointment is %s and can no longer be deleted", a.Status)
	}
	delete(r.db.appointments, id)
	return nil
}
