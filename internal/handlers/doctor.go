package handlers

import (
	"strings"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/middleware"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// DoctorHandler handles doctor applications and the doctor directory.
type DoctorHandler struct {
	Doctors repository.DoctorRepository
	Log     *logger.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors repository.DoctorRepository, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors, Log: log}
}

// ApplyRequest represents a doctor application.
type ApplyRequest struct {
	Specialist string   `json:"specialist" binding:"required"`
	Fees       *float64 `json:"fees" binding:"required"`
}

// existingStatus returns the status of userID's profile, or nil when the
// user has never applied.
func (h *DoctorHandler) existingStatus(c *gin.Context, userID string) (*domain.ApplicationStatus, error) {
	profile, err := h.Doctors.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	status := profile.Status
	return &status, nil
}

// Apply submits the caller's application to become a doctor.
func (h *DoctorHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	existing, err := h.existingStatus(c, actor.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	specialist := strings.TrimSpace(req.Specialist)
	if err := domain.CheckApply(actor, existing, specialist, *req.Fees); err != nil {
		h.Log.Audit(actor.ID, "doctor.apply", "user/"+actor.ID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	profile := models.DoctorProfile{
		UserID:     actor.ID,
		Specialist: specialist,
		Fees:       *req.Fees,
		Status:     domain.ApplicationPending,
	}
	ctx := c.Request.Context()
	if err := h.Doctors.Create(ctx, &profile); err != nil {
		utils.RespondError(c, err)
		return
	}
	created, err := h.Doctors.FindByID(ctx, profile.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "doctor.apply", "doctor/"+profile.ID, true, nil)
	utils.Created(c, "Doctor application submitted successfully", utils.Envelope{"doctor": created})
}

// GetDoctorInfo returns the caller's own doctor profile.
func (h *DoctorHandler) GetDoctorInfo(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	profile, err := h.Doctors.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", utils.Envelope{"doctor": profile})
}

// ApplicationStatus reports the caller's application. A user who never
// applied gets 404, which clients treat as "no application".
func (h *DoctorHandler) ApplicationStatus(c *gin.Context) {
	h.GetDoctorInfo(c)
}

// UpdateDoctorRequest holds the editable doctor fields. Omitted fields are
// left unchanged.
type UpdateDoctorRequest struct {
	Specialist string   `json:"specialist"`
	Fees       *float64 `json:"fees"`
}

// UpdateDoctor edits the caller's own accepted doctor profile.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Doctors.FindByUserID(ctx, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if profile.Status != domain.ApplicationAccepted {
		utils.RespondError(c, apperrors.State("doctor profile is %s and cannot be edited", profile.Status))
		return
	}

	if s := strings.TrimSpace(req.Specialist); s != "" {
		profile.Specialist = s
	}
	if req.Fees != nil {
		if *req.Fees < 0 {
			utils.BadRequest(c, "fees must be a non-negative number")
			return
		}
		profile.Fees = *req.Fees
	}

	if err := h.Doctors.Update(ctx, profile); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(userID, "doctor.update", "doctor/"+profile.ID, true, nil)
	utils.Success(c, "Doctor profile updated successfully", utils.Envelope{"doctor": profile})
}

// GetAllDoctors lists doctor profiles scoped to the caller's role. The
// optional q, specialty and sort query parameters narrow and order the
// result the same way the dashboard directory does.
func (h *DoctorHandler) GetAllDoctors(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	profiles, err := h.Doctors.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	doctors := domain.VisibleDoctors(role, profiles)
	doctors = domain.SearchDoctors(doctors, c.Query("q"), c.Query("specialty"))
	if key := domain.SortKey(c.Query("sort")); key != "" {
		doctors = domain.SortDoctors(doctors, key)
	}

	utils.Success(c, "Doctors fetched successfully", utils.Envelope{"doctors": doctors})
}

// DocStatusRequest carries an admin decision.
type DocStatusRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required"`
}

// DocStatus accepts or rejects a pending application (admin). Accepting
// promotes the applicant to the Doctor role.
func (h *DoctorHandler) DocStatus(c *gin.Context) {
	var req DocStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, _ := middleware.GetActor(c)

	ctx := c.Request.Context()
	profile, err := h.Doctors.FindByID(ctx, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := domain.CheckReview(actor, profile.Status, req.Status); err != nil {
		h.Log.Audit(actor.ID, "doctor.review", "doctor/"+profile.ID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	ownerRole := domain.RoleUser
	if req.Status == domain.ApplicationAccepted {
		ownerRole = domain.RoleDoctor
	}
	profile.Status = req.Status
	if err := h.Doctors.Review(ctx, profile, ownerRole); err != nil {
		utils.RespondError(c, err)
		return
	}

	reviewed, err := h.Doctors.FindByID(ctx, profile.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "doctor.review", "doctor/"+profile.ID, true, map[string]interface{}{"status": req.Status})
	utils.Success(c, "Doctor "+strings.ToLower(string(req.Status))+" successfully", utils.Envelope{"doctor": reviewed})
}

// DeleteDoctor removes a reviewed profile (admin). The owner goes back to
// the User role and Pending appointments booked with them are rejected.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx := c.Request.Context()
	profile, err := h.Doctors.FindByID(ctx, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := domain.CheckRemoval(actor, profile.Status); err != nil {
		h.Log.Audit(actor.ID, "doctor.delete", "doctor/"+profile.ID, false, map[string]interface{}{"reason": err.Error()})
		utils.RespondError(c, err)
		return
	}

	if err := h.Doctors.Delete(ctx, profile, domain.RoleUser); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(actor.ID, "doctor.delete", "doctor/"+profile.ID, true, nil)
	utils.Success(c, "Doctor deleted successfully", nil)
}
