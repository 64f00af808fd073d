package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/domain"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// Client calls the healthcare REST API. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register creates an account. Server rejections come back as auth errors.
func (c *Client) Register(ctx context.Context, req Registration) (*User, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out struct {
		User *User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/user/register", false, req, &out); err != nil {
		return nil, asAuth(err)
	}
	return out.User, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := Validate(creds); err != nil {
		return nil, err
	}
	var out LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/user/login", false, creds, &out); err != nil {
		return nil, asAuth(err)
	}
	if out.Token == "" {
		return nil, apperrors.Network("login response carried no token", nil)
	}
	return &out, nil
}

// asAuth reports any server-side rejection of login or registration as an
// auth error. Transport failures stay network errors.
func asAuth(err error) error {
	if apperrors.IsNetwork(err) || apperrors.IsAuth(err) {
		return err
	}
	return apperrors.Auth("%s", apperrors.MessageOf(err))
}

func (c *Client) GetUserInfo(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/getUserInfo", true, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// DoctorList returns users holding the Doctor role.
func (c *Client) DoctorList(ctx context.Context) ([]User, error) {
	var out struct {
		Doctors []User `json:"doctors"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/doctorList", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/getAllUsers", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*User, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out struct {
		User *User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/user/updateProfile", true, req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UploadProfileImage sends image as the multipart profileImage field.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, image io.Reader) (*User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profileImage", filename)
	if err != nil {
		return nil, apperrors.Internal("failed to build upload", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, apperrors.Validation("failed to read %s: %v", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, apperrors.Internal("failed to build upload", err)
	}

	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/upload-profile", true, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Apply(ctx context.Context, req DoctorApplication) (*DoctorProfile, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.doctor(ctx, http.MethodPost, "/doctor/apply", req)
}

func (c *Client) GetDoctorInfo(ctx context.Context) (*DoctorProfile, error) {
	return c.doctor(ctx, http.MethodGet, "/doctor/getDoctorInfo", nil)
}

func (c *Client) UpdateDoctor(ctx context.Context, req DoctorUpdate) (*DoctorProfile, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.doctor(ctx, http.MethodPatch, "/doctor/updateDoctor", req)
}

// ApplicationStatus returns the caller's application. A NotFound error means
// the caller never applied.
func (c *Client) ApplicationStatus(ctx context.Context) (*DoctorProfile, error) {
	return c.doctor(ctx, http.MethodGet, "/doctor/application-status", nil)
}

// SetDoctorStatus accepts or rejects an application (admin).
func (c *Client) SetDoctorStatus(ctx context.Context, profileID string, status domain.ApplicationStatus) (*DoctorProfile, error) {
	return c.doctor(ctx, http.MethodPatch, "/doctor/docStatus/"+url.PathEscape(profileID), map[string]domain.ApplicationStatus{"status": status})
}

// DeleteDoctor removes a reviewed profile (admin).
func (c *Client) DeleteDoctor(ctx context.Context, profileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/doctor/deleteDoctor/"+url.PathEscape(profileID), true, nil, nil)
}

// GetAllDoctors lists doctor profiles visible to the caller.
func (c *Client) GetAllDoctors(ctx context.Context, q DoctorQuery) ([]DoctorProfile, error) {
	params := url.Values{}
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	if q.Specialty != "" {
		params.Set("specialty", q.Specialty)
	}
	if q.Sort != "" {
		params.Set("sort", string(q.Sort))
	}
	path := "/doctor/getAllDoctors"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Doctors []DoctorProfile `json:"doctors"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

func (c *Client) doctor(ctx context.Context, method, path string, body interface{}) (*DoctorProfile, error) {
	var out struct {
		Doctor *DoctorProfile `json:"doctor"`
	}
	if err := c.doJSON(ctx, method, path, true, body, &out); err != nil {
		return nil, err
	}
	return out.Doctor, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req NewAppointment) (*Appointment, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.appointment(ctx, http.MethodPost, "/appointment/create", req)
}

// AppointmentsByUser lists the appointments the caller booked.
func (c *Client) AppointmentsByUser(ctx context.Context) ([]Appointment, error) {
	return c.appointments(ctx, "/appointment/getAppointmentsByUser")
}

// AppointmentsOfDoctor lists the appointments booked with the calling doctor.
func (c *Client) AppointmentsOfDoctor(ctx context.Context) ([]Appointment, error) {
	return c.appointments(ctx, "/appointment/showAppointmentsOfDoctor")
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*Appointment, error) {
	return c.appointment(ctx, http.MethodPatch, "/appointment/statusUpdateByDoctor/"+url.PathEscape(id), map[string]domain.AppointmentStatus{"status": status})
}

func (c *Client) RescheduleAppointment(ctx context.Context, id string, at time.Time) (*Appointment, error) {
	if at.IsZero() {
		return nil, apperrors.Validation("dateTime is required")
	}
	return c.appointment(ctx, http.MethodPut, "/appointment/update/"+url.PathEscape(id), map[string]time.Time{"dateTime": at})
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/appointment/deleteAppointment/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) appointment(ctx context.Context, method, path string, body interface{}) (*Appointment, error) {
	var out struct {
		Appointment *Appointment `json:"appointment"`
	}
	if err := c.doJSON(ctx, method, path, true, body, &out); err != nil {
		return nil, err
	}
	return out.Appointment, nil
}

func (c *Client) appointments(ctx context.Context, path string) ([]Appointment, error) {
	var out struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, authed bool, body interface{}, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal("failed to encode request", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, authed, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body io.Reader, contentType string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Internal("failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.Network("Unable to reach the server", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Network("failed to read response", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorForStatus(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return apperrors.Network("invalid response from server", decodeErr)
	}
	if !env.Success {
		return apperrors.Network(fallback(env.Message, "request failed"), nil)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.Network("invalid response from server", err)
		}
	}
	return nil
}

func fallback(message, def string) string {
	if strings.TrimSpace(message) == "" {
		return def
	}
	return message
}

// errorForStatus maps a failed response to the error taxonomy, keeping the
// server's message.
func errorForStatus(status int, message string) error {
	msg := fallback(message, fmt.Sprintf("request failed with status %d", status))
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Validation("%s", msg)
	case http.StatusUnauthorized:
		return apperrors.Auth("%s", msg)
	case http.StatusForbidden:
		return apperrors.Permission("%s", msg)
	case http.StatusNotFound:
		return apperrors.NotFound("%s", msg)
	case http.StatusConflict:
		return apperrors.State("%s", msg)
	default:
		return apperrors.Network(msg, nil)
	}
}
