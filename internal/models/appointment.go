package models

import (
	"time"

	"healthcare-dashboard/internal/domain"
)

// Appointment is a consultation booked by a patient with a doctor.
type Appointment struct {
	BaseModel
	CreatedByID string                   `gorm:"size:36;index;not null" json:"createdById"`
	DoctorID    string                   `gorm:"size:36;index;not null" json:"doctorId"`
	DateTime    time.Time                `gorm:"not null" json:"dateTime"`
	Status      domain.AppointmentStatus `gorm:"size:20;default:'Pending'" json:"status"`

	// Relations
	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Doctor    *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// Ref returns the fields the lifecycle rules look at.
func (a *Appointment) Ref() domain.AppointmentRef {
	return domain.AppointmentRef{
		CreatedBy: a.CreatedByID,
		DoctorID:  a.DoctorID,
		Status:    a.Status,
	}
}
