package dashboard

import (
	"context"

	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
)

// DirectoryAPI lists doctor profiles.
type DirectoryAPI interface {
	GetAllDoctors(ctx context.Context, q client.DoctorQuery) ([]client.DoctorProfile, error)
}

// Directory is the doctor listing with search, specialty filter and sort
// applied locally over what the caller may see.
type Directory struct {
	*lifecycle
	api   DirectoryAPI
	who   Identity
	toast *Toaster

	all       []client.DoctorProfile
	query     string
	specialty string
	sort      domain.SortKey
}

func NewDirectory(api DirectoryAPI, who Identity, toast *Toaster) *Directory {
	return &Directory{
		lifecycle: newLifecycle(),
		api:       api,
		who:       who,
		toast:     toast,
		specialty: domain.AllSpecialty,
		sort:      domain.SortNameAsc,
	}
}

// Refresh re-fetches the listing.
func (d *Directory) Refresh(ctx context.Context) error {
	reqCtx, done, err := d.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	doctors, err := d.api.GetAllDoctors(reqCtx, client.DoctorQuery{})
	if err != nil {
		return report(d.toast, d.settle(err))
	}
	// Non-admins never list unaccepted profiles, even with a stale role.
	visible := domain.VisibleDoctors(actorOf(d.who).Role, doctors)
	return d.commit(func() { d.all = visible })
}

func (d *Directory) SetQuery(q string) { d.read(func() { d.query = q }) }

// SetSpecialty filters by specialty; "" or "all" shows every specialty.
func (d *Directory) SetSpecialty(s string) { d.read(func() { d.specialty = s }) }

func (d *Directory) SetSort(key domain.SortKey) { d.read(func() { d.sort = key }) }

// Doctors returns the filtered and sorted listing.
func (d *Directory) Doctors() []client.DoctorProfile {
	var out []client.DoctorProfile
	d.read(func() {
		out = domain.SortDoctors(domain.SearchDoctors(d.all, d.query, d.specialty), d.sort)
	})
	return out
}

// Find returns the listed profile with id, ignoring filters.
func (d *Directory) Find(id string) (client.DoctorProfile, bool) {
	var (
		found client.DoctorProfile
		ok    bool
	)
	d.read(func() {
		for _, doc := range d.all {
			if doc.ID == id {
				found, ok = doc, true
				return
			}
		}
	})
	return found, ok
}

// Specialties lists the specialties present, for the filter choices.
func (d *Directory) Specialties() []string {
	var out []string
	d.read(func() { out = domain.Specialties(d.all) })
	return out
}

// Stats summarises the filtered listing.
func (d *Directory) Stats() domain.DirectoryStats {
	return domain.Stats(d.Doctors())
}
