package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/middleware"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxProfileImageBytes bounds profile image uploads.
const MaxProfileImageBytes = 5 << 20

// UploadsURLPrefix is where uploaded files are served from.
const UploadsURLPrefix = "/uploads/"

// UserHandler handles account and profile requests.
type UserHandler struct {
	Users repository.UserRepository
	Cfg   *config.Config
	Log   *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users repository.UserRepository, cfg *config.Config, log *logger.Logger) *UserHandler {
	return &UserHandler{Users: users, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	ContactNumber string `json:"contactNumber" binding:"required"`
	Address       string `json:"address"`
}

// Register creates an account with the User role. Other roles are never
// taken from the request.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !apperrors.IsNotFound(err) {
		utils.RespondError(c, err)
		return
	}

	user := models.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Role:          domain.RoleUser,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.RespondError(c, apperrors.Internal("failed to hash password", err))
		return
	}

	if err := h.Users.Create(ctx, &user); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(user.ID, "user.register", "user/"+user.ID, true, nil)
	utils.Created(c, "User registered successfully", utils.Envelope{"user": user.Sanitize()})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.RespondError(c, err)
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		h.Log.Audit(user.ID, "user.login", "user/"+user.ID, false, nil)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	ttl := time.Duration(h.Cfg.JWTExpirationMinutes) * time.Minute
	token, err := utils.GenerateToken(user, h.Cfg.JWTSecret, ttl)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("failed to generate token", err))
		return
	}

	utils.Success(c, "Login successful", utils.Envelope{
		"token": token,
		"user":  user.Sanitize(),
	})
}

func (h *UserHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	return user, true
}

// GetUserInfo returns the authenticated user.
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	utils.Success(c, "User fetched successfully", utils.Envelope{"user": user.Sanitize()})
}

func sanitizeAll(users []models.User) []models.UserSanitized {
	out := make([]models.UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	return out
}

// DoctorList returns every user holding the Doctor role.
func (h *UserHandler) DoctorList(c *gin.Context) {
	doctors, err := h.Users.ListByRole(c.Request.Context(), domain.RoleDoctor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", utils.Envelope{"doctors": sanitizeAll(doctors)})
}

// GetAllUsers returns every account (admin).
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Users fetched successfully", utils.Envelope{"users": sanitizeAll(users)})
}

// UpdateProfileRequest holds the editable profile fields. Empty fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email" binding:"omitempty,email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

// UpdateProfile edits the authenticated user's own profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if other, err := h.Users.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
			utils.BadRequest(c, "New email is already in use")
			return
		} else if err != nil && !apperrors.IsNotFound(err) {
			utils.RespondError(c, err)
			return
		}
		user.Email = email
	}
	if req.ContactNumber != "" {
		user.ContactNumber = req.ContactNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if err := h.Users.Update(ctx, user); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.Log.Audit(user.ID, "user.update_profile", "user/"+user.ID, true, nil)
	utils.Success(c, "Profile updated successfully", utils.Envelope{"user": user.Sanitize()})
}

// UploadProfile stores a multipart profileImage under the upload directory
// and points the user's profile at it. Only image content is accepted.
func (h *UserHandler) UploadProfile(c *gin.Context) {
	header, err := c.FormFile("profileImage")
	if err != nil {
		utils.BadRequest(c, "profileImage is required")
		return
	}
	if header.Size > MaxProfileImageBytes {
		utils.BadRequest(c, "profileImage must be at most 5MB")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, apperrors.Internal("failed to read upload", err))
		return
	}
	defer file.Close()

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("failed to inspect upload", err))
		return
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		utils.BadRequest(c, "profileImage must be an image, got "+mime.String())
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		utils.RespondError(c, apperrors.Internal("failed to prepare upload directory", err))
		return
	}
	name := uuid.New().String() + mime.Extension()
	if err := c.SaveUploadedFile(header, filepath.Join(h.Cfg.UploadDir, name)); err != nil {
		utils.RespondError(c, apperrors.Internal("failed to store upload", err))
		return
	}

	previous := user.ProfileImage
	user.ProfileImage = UploadsURLPrefix + name
	if err := h.Users.Update(c.Request.Context(), user); err != nil {
		_ = os.Remove(filepath.Join(h.Cfg.UploadDir, name))
		utils.RespondError(c, err)
		return
	}
	if strings.HasPrefix(previous, UploadsURLPrefix) {
		if err := os.Remove(filepath.Join(h.Cfg.UploadDir, strings.TrimPrefix(previous, UploadsURLPrefix))); err != nil && !os.IsNotExist(err) {
			h.Log.WithUserID(user.ID).WithError(err).Warn("failed to remove previous profile image")
		}
	}

	h.Log.Audit(user.ID, "user.upload_profile", "user/"+user.ID, true, map[string]interface{}{"content_type": mime.String()})
	utils.Success(c, "Profile image uploaded successfully", utils.Envelope{"user": user.Sanitize()})
}
