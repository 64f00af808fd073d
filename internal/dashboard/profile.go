package dashboard

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/session"

	"github.com/gabriel-vasile/mimetype"
)

// ProfileAPI is the part of the API client the profile page uses.
type ProfileAPI interface {
	session.IdentitySource
	UpdateProfile(ctx context.Context, req client.ProfileUpdate) (*client.User, error)
	UploadProfileImage(ctx context.Context, filename string, image io.Reader) (*client.User, error)
	GetDoctorInfo(ctx context.Context) (*client.DoctorProfile, error)
	UpdateDoctor(ctx context.Context, req client.DoctorUpdate) (*client.DoctorProfile, error)
}

// Refresher re-reads the signed-in identity from the server and announces
// it.
type Refresher interface {
	Identity
	Refresh(ctx context.Context, src session.IdentitySource) error
}

// Profile is the signed-in user's own details, plus the doctor profile when
// the user is a doctor.
type Profile struct {
	*lifecycle
	api     ProfileAPI
	session Refresher
	toast   *Toaster

	doctor *client.DoctorProfile
}

func NewProfile(api ProfileAPI, session Refresher, toast *Toaster) *Profile {
	return &Profile{lifecycle: newLifecycle(), api: api, session: session, toast: toast}
}

// User returns the signed-in user.
func (p *Profile) User() *client.User {
	return p.session.CurrentUser()
}

// Doctor returns a copy of the doctor profile, or nil.
func (p *Profile) Doctor() *client.DoctorProfile {
	var out *client.DoctorProfile
	p.read(func() {
		if p.doctor != nil {
			cp := *p.doctor
			out = &cp
		}
	})
	return out
}

// Load refreshes the identity and, for doctors, the doctor profile.
func (p *Profile) Load(ctx context.Context) error {
	return report(p.toast, p.load(ctx))
}

func (p *Profile) load(ctx context.Context) error {
	reqCtx, done, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := p.session.Refresh(reqCtx, p.api); err != nil {
		return p.settle(err)
	}

	var doctor *client.DoctorProfile
	if actorOf(p.session).Role == domain.RoleDoctor {
		doctor, err = p.api.GetDoctorInfo(reqCtx)
		if err != nil && !apperrors.IsNotFound(err) {
			return p.settle(err)
		}
	}
	return p.commit(func() { p.doctor = doctor })
}

func (p *Profile) mutate(ctx context.Context, message string, call func(context.Context) error) error {
	reqCtx, done, err := p.begin(ctx)
	if err != nil {
		return err
	}
	err = call(reqCtx)
	done()
	if err := p.settle(err); err != nil {
		return report(p.toast, err)
	}
	p.toast.Success(message)
	return report(p.toast, p.load(ctx))
}

// Update changes the editable account fields. Empty fields are left as they
// are.
func (p *Profile) Update(ctx context.Context, req client.ProfileUpdate) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := client.Validate(req); err != nil {
		return report(p.toast, err)
	}
	return p.mutate(ctx, "Profile updated successfully", func(ctx context.Context) error {
		_, err := p.api.UpdateProfile(ctx, req)
		return err
	})
}

// UploadImage sends the image file at path as the profile picture. Files
// that do not sniff as an image are rejected before upload.
func (p *Profile) UploadImage(ctx context.Context, path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return report(p.toast, apperrors.Validation("cannot read %s", filepath.Base(path)))
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return report(p.toast, apperrors.Validation("profile image must be an image, got %s", mtype.String()))
	}

	return p.mutate(ctx, "Profile image updated successfully", func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return apperrors.Validation("cannot read %s", filepath.Base(path))
		}
		defer f.Close()
		_, err = p.api.UploadProfileImage(ctx, filepath.Base(path), f)
		return err
	})
}

// UpdateDoctor changes the signed-in doctor's specialization or fee.
func (p *Profile) UpdateDoctor(ctx context.Context, req client.DoctorUpdate) error {
	if actorOf(p.session).Role != domain.RoleDoctor {
		return report(p.toast, apperrors.Permission("only doctors can update a doctor profile"))
	}
	req.Specialist = strings.TrimSpace(req.Specialist)
	if err := client.Validate(req); err != nil {
		return report(p.toast, err)
	}
	return p.mutate(ctx, "Doctor profile updated successfully", func(ctx context.Context) error {
		_, err := p.api.UpdateDoctor(ctx, req)
		return err
	})
}
