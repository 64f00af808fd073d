package models

import "healthcare-dashboard/internal/domain"

// DoctorProfile is a user's application to practise, reviewed by an admin.
type DoctorProfile struct {
	BaseModel
	UserID     string                   `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialist string                   `gorm:"size:100;not null" json:"specialist"`
	Fees       float64                  `gorm:"not null" json:"fees"`
	Status     domain.ApplicationStatus `gorm:"size:20;default:'Pending';index" json:"status"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// DoctorName returns the owning user's name, or "" when it was not loaded.
func (d DoctorProfile) DoctorName() string {
	if d.User == nil {
		return ""
	}
	return d.User.Name
}

func (d DoctorProfile) Specialty() string { return d.Specialist }

func (d DoctorProfile) Fee() float64 { return d.Fees }

func (d DoctorProfile) ApplicationStatus() domain.ApplicationStatus { return d.Status }
