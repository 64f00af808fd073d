package handlers

import (
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/middleware"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Users        repository.UserRepository
	Appointments repository.AppointmentRepository
	Log          *logger.Logger
	Now          func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(users repository.UserRepository, appointments repository.AppointmentRepository, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{Users: users, Appointments: appointments, Log: log, Now: time.Now}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	DateTime string `json:"dateTime"`
}

// CreateAppointment books an appointment for the caller with a doctor.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	at, err := domain.ParseDateTime(req.DateTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := domain.CheckCreate(actor, req.DoctorID, at, h.Now()); err != nil {
		h.Log.Audit(actor.ID, "appointment.create", "doctor/"+req.DoctorID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	doctor, err := h.Users.FindByID(ctx, req.DoctorID)
	if err != nil || doctor.Role != domain.RoleDoctor {
		if err != nil && !apperrors.IsNotFound(err) {
			utils.RespondError(c, err)
			return
		}
		utils.NotFound(c, "Doctor not found")
		return
	}

	appt := models.Appointment{
		CreatedByID: actor.ID,
		DoctorID:    doctor.ID,
		DateTime:    at,
		Status:      domain.AppointmentPending,
	}
	if err := h.Appointments.Create(ctx, &appt); err != nil {
		utils.RespondError(c, err)
		return
	}
	created, err := h.Appointments.FindByID(ctx, appt.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "appointment.create", "appointment/"+appt.ID, true, nil)
	utils.Created(c, "Appointment created successfully", utils.Envelope{"appointment": created})
}

// GetAppointmentsByUser lists the appointments the caller booked.
func (h *AppointmentHandler) GetAppointmentsByUser(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	appointments, err := h.Appointments.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", utils.Envelope{"appointments": appointments})
}

// ShowAppointmentsOfDoctor lists the appointments booked with the calling doctor.
func (h *AppointmentHandler) ShowAppointmentsOfDoctor(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	appointments, err := h.Appointments.ListByDoctor(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", utils.Envelope{"appointments": appointments})
}

// loadForActor fetches the :id appointment. It writes the error response
// itself and returns false on failure.
func (h *AppointmentHandler) loadForActor(c *gin.Context) (*models.Appointment, domain.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, actor, false
	}
	appt, err := h.Appointments.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return nil, actor, false
	}
	return appt, actor, true
}

// StatusUpdateRequest carries a doctor's status change.
type StatusUpdateRequest struct {
	Status domain.AppointmentStatus `json:"status" binding:"required"`
}

// StatusUpdateByDoctor moves an appointment along its lifecycle. Only the
// assigned doctor may do this.
func (h *AppointmentHandler) StatusUpdateByDoctor(c *gin.Context) {
	var req StatusUpdateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appt, actor, ok := h.loadForActor(c)
	if !ok {
		return
	}

	if err := domain.CheckStatusChange(actor, appt.Ref(), req.Status); err != nil {
		h.Log.Audit(actor.ID, "appointment.status", "appointment/"+appt.ID, false, map[string]interface{}{
			"from": appt.Status, "to": req.Status, "reason": err.Error(),
		})
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	from := appt.Status
	if err := h.Appointments.SetStatus(ctx, appt.ID, from, req.Status); err != nil {
		utils.RespondError(c, err)
		return
	}
	updated, err := h.Appointments.FindByID(ctx, appt.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "appointment.status", "appointment/"+appt.ID, true, map[string]interface{}{"from": from, "to": req.Status})
	utils.Success(c, "Appointment status updated successfully", utils.Envelope{"appointment": updated})
}

// RescheduleRequest carries a new appointment time.
type RescheduleRequest struct {
	DateTime string `json:"dateTime"`
}

// UpdateAppointment reschedules a pending appointment. Only the patient who
// booked it may do this. Only the date-time is written, and only while the
// stored appointment is still Pending.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	at, err := domain.ParseDateTime(req.DateTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	appt, actor, ok := h.loadForActor(c)
	if !ok {
		return
	}

	if err := domain.CheckReschedule(actor, appt.Ref(), at, h.Now()); err != nil {
		h.Log.Audit(actor.ID, "appointment.reschedule", "appointment/"+appt.ID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.Appointments.Reschedule(ctx, appt.ID, at); err != nil {
		utils.RespondError(c, err)
		return
	}
	updated, err := h.Appointments.FindByID(ctx, appt.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "appointment.reschedule", "appointment/"+appt.ID, true, nil)
	utils.Success(c, "Appointment updated successfully", utils.Envelope{"appointment": updated})
}

// DeleteAppointment removes a pending appointment. Only the patient who
// booked it may do this. The store refuses the delete if the appointment left
// Pending after it was checked.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appt, actor, ok := h.loadForActor(c)
	if !ok {
		return
	}

	if err := domain.CheckDelete(actor, appt.Ref()); err != nil {
		h.Log.Audit(actor.ID, "appointment.delete", "appointment/"+appt.ID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	if err := h.Appointments.Delete(c.Request.Context(), appt.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "appointment.delete", "appointment/"+appt.ID, true, nil)
	utils.Success(c, "Appointment deleted successfully", nil)
}
