package domain

// Page keys used by the dashboard navigation.
const (
	PageDashboard         = "dashboard"
	PageProfile           = "profile"
	PageAppointments      = "appointments"
	PageCreateAppointment = "create-appointment"
	PageApplyDoctor       = "apply-doctor"
	PageDoctors           = "doctors"
	PageUsers             = "users"
)

// MenuItem is one navigable page.
type MenuItem struct {
	Label string
	Page  string
}

var (
	menuDashboard         = MenuItem{Label: "Dashboard", Page: PageDashboard}
	menuProfile           = MenuItem{Label: "Profile", Page: PageProfile}
	menuAppointments      = MenuItem{Label: "Appointments", Page: PageAppointments}
	menuCreateAppointment = MenuItem{Label: "Create Appointment", Page: PageCreateAppointment}
	menuApplyDoctor       = MenuItem{Label: "Apply for Doctor", Page: PageApplyDoctor}
	menuDoctors           = MenuItem{Label: "All Doctors", Page: PageDoctors}
	menuUsers             = MenuItem{Label: "All Users", Page: PageUsers}
)

// MenuFor returns the ordered navigation for role. Undefined roles get nil.
func MenuFor(role Role) []MenuItem {
	var extra []MenuItem
	switch role {
	case RoleUser:
		extra = []MenuItem{menuCreateAppointment, menuApplyDoctor}
	case RoleDoctor:
		extra = []MenuItem{menuCreateAppointment}
	case RoleAdmin:
		extra = []MenuItem{menuDoctors, menuUsers, menuCreateAppointment}
	default:
		return nil
	}

	menu := []MenuItem{menuDashboard, menuProfile, menuAppointments}
	return append(menu, extra...)
}

// HasPage reports whether page is reachable from menu.
func HasPage(menu []MenuItem, page string) bool {
	for _, item := range menu {
		if item.Page == page {
			return true
		}
	}
	return false
}
