package domain

import (
	"sort"
	"strings"
)

// DoctorListing is what the doctor directory filters and sorts on.
type DoctorListing interface {
	DoctorName() string
	Specialty() string
	Fee() float64
	ApplicationStatus() ApplicationStatus
}

// SortKey selects the directory ordering.
type SortKey string

const (
	SortNameAsc  SortKey = "name"
	SortFeeAsc   SortKey = "fee-asc"
	SortFeeDesc  SortKey = "fee-desc"
	AllSpecialty         = "all"
)

// VisibleDoctors scopes the directory to what viewer may see: admins see
// every profile, everyone else only accepted doctors.
func VisibleDoctors[D DoctorListing](viewer Role, all []D) []D {
	out := make([]D, 0, len(all))
	for _, d := range all {
		if viewer == RoleAdmin || d.ApplicationStatus() == ApplicationAccepted {
			out = append(out, d)
		}
	}
	return out
}

// SearchDoctors keeps entries whose name or specialty contains query
// (case-insensitive) and whose specialty equals specialty. An empty
// specialty or "all" disables the specialty match.
func SearchDoctors[D DoctorListing](list []D, query, specialty string) []D {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]D, 0, len(list))
	for _, d := range list {
		if specialty != "" && specialty != AllSpecialty && d.Specialty() != specialty {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(d.DoctorName()), q) &&
			!strings.Contains(strings.ToLower(d.Specialty()), q) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SortDoctors returns a sorted copy of list. Unknown keys keep server order.
func SortDoctors[D DoctorListing](list []D, key SortKey) []D {
	out := make([]D, len(list))
	copy(out, list)

	var less func(a, b D) bool
	switch key {
	case SortNameAsc:
		less = func(a, b D) bool { return strings.ToLower(a.DoctorName()) < strings.ToLower(b.DoctorName()) }
	case SortFeeAsc:
		less = func(a, b D) bool { return a.Fee() < b.Fee() }
	case SortFeeDesc:
		less = func(a, b D) bool { return a.Fee() > b.Fee() }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Specialties returns the distinct non-empty specialties in first-seen order.
func Specialties[D DoctorListing](list []D) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range list {
		s := d.Specialty()
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// DirectoryStats summarises a doctor list.
type DirectoryStats struct {
	Total       int
	Specialties int
	AverageFee  int
}

func Stats[D DoctorListing](list []D) DirectoryStats {
	stats := DirectoryStats{Total: len(list), Specialties: len(Specialties(list))}
	if len(list) == 0 {
		return stats
	}
	var sum float64
	for _, d := range list {
		sum += d.Fee()
	}
	stats.AverageFee = int(sum / float64(len(list)))
	return stats
}
