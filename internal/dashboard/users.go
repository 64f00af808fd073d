package dashboard

import (
	"context"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
)

// UsersAPI lists accounts.
type UsersAPI interface {
	GetAllUsers(ctx context.Context) ([]client.User, error)
	DoctorList(ctx context.Context) ([]client.User, error)
}

// Users is the admin account listing and the doctor picker used when
// booking.
type Users struct {
	*lifecycle
	api   UsersAPI
	who   Identity
	toast *Toaster

	all     []client.User
	doctors []client.User
}

func NewUsers(api UsersAPI, who Identity, toast *Toaster) *Users {
	return &Users{lifecycle: newLifecycle(), api: api, who: who, toast: toast}
}

// Refresh re-fetches every account. Only admins may list accounts.
func (u *Users) Refresh(ctx context.Context) error {
	if actorOf(u.who).Role != domain.RoleAdmin {
		return report(u.toast, apperrors.Permission("only admins can list users"))
	}
	reqCtx, done, err := u.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	all, err := u.api.GetAllUsers(reqCtx)
	if err != nil {
		return report(u.toast, u.settle(err))
	}
	return u.commit(func() { u.all = all })
}

// RefreshDoctors re-fetches the doctors that can be booked.
func (u *Users) RefreshDoctors(ctx context.Context) error {
	reqCtx, done, err := u.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	doctors, err := u.api.DoctorList(reqCtx)
	if err != nil {
		return report(u.toast, u.settle(err))
	}
	return u.commit(func() { u.doctors = doctors })
}

func (u *Users) All() []client.User {
	var out []client.User
	u.read(func() { out = append(out, u.all...) })
	return out
}

// Doctors returns the bookable doctors from the last RefreshDoctors.
func (u *Users) Doctors() []client.User {
	var out []client.User
	u.read(func() { out = append(out, u.doctors...) })
	return out
}

// CountByRole counts the listed accounts per role.
func (u *Users) CountByRole() map[domain.Role]int {
	counts := make(map[domain.Role]int)
	u.read(func() {
		for _, user := range u.all {
			counts[user.Role]++
		}
	})
	return counts
}
