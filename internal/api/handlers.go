package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/plate-notify/internal/auth"
	"github.com/plate-notify/internal/model"
	"github.com/plate-notify/internal/obs"
	"github.com/sirupsen/logrus"
)

// UserStore is the credential store used by the handlers.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, name, email, passwordHash string) error
}

type NotificationStore interface {
	Create(ctx context.Context, ownerID int64, plate, occurrence string) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Notification, error)
	ListNotOwnedBy(ctx context.Context, ownerID int64) ([]model.Notification, error)
}

type SessionIssuer interface {
	Issue(user *model.User) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains all API handlers
type Handler struct {
	users         UserStore
	notifications NotificationStore
	hasher        PasswordHasher
	sessions      SessionIssuer
	db            Pinger
	metrics       *obs.Metrics
	log           logrus.FieldLogger
}

// NewHandler creates a new API handler
func NewHandler(
	users UserStore,
	notifications NotificationStore,
	hasher PasswordHasher,
	sessions SessionIssuer,
	db Pinger,
	metrics *obs.Metrics,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		users:         users,
		notifications: notifications,
		hasher:        hasher,
		sessions:      sessions,
		db:            db,
		metrics:       metrics,
		log:           log,
	}
}

// Auth handlers

// Register godoc
// @Summary Register a new user
// @Description Create a user account. The password is stored as a bcrypt hash.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration details"
// @Success 201 {object} model.RegisterResponse
// @Failure 400 {object} model.MessageResponse "Missing fields or email already registered"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.fail(w, r, model.ErrBadRequest, "name, email and password are required")
		return
	}
	if !isValidEmail(req.Email) {
		h.fail(w, r, model.ErrBadRequest, "invalid email format")
		return
	}

	// The unique index is the real guard; this only short-circuits the
	// bcrypt cost for the common duplicate case.
	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err, "failed to register user")
		return
	}
	if existing != nil {
		h.fail(w, r, model.ErrConflict, "email already registered")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.fail(w, r, err, "failed to register user")
		return
	}

	id, err := h.users.Create(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			h.fail(w, r, err, "email already registered")
			return
		}
		h.fail(w, r, err, "failed to register user")
		return
	}

	h.metrics.UsersRegistered.Inc()
	respondJSON(w, http.StatusCreated, model.RegisterResponse{
		Message: "user registered successfully",
		UserID:  id,
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate with email and password and receive a session token valid for one hour
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.MessageResponse "Missing fields or invalid credentials"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.fail(w, r, model.ErrBadRequest, "email and password are required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err, "failed to log in")
		return
	}
	// Same answer for unknown email and wrong password.
	if user == nil || !h.hasher.Compare(user.Password, req.Password) {
		h.fail(w, r, model.ErrInvalidCredentials, "invalid credentials")
		return
	}

	token, expiresAt, err := h.sessions.Issue(user)
	if err != nil {
		h.fail(w, r, err, "failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, model.LoginResponse{
		Message:   "login successful",
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

// User handlers

// GetUser godoc
// @Summary Get a user
// @Description Return the caller's own profile. The path id must match the session user.
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.Profile
// @Failure 403 {object} model.MessageResponse "Missing/invalid token or id mismatch"
// @Failure 404 {object} model.MessageResponse "User not found"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.ownerOf(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		h.fail(w, r, err, "failed to load user")
		return
	}
	if user == nil {
		h.fail(w, r, model.ErrNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, user.Profile())
}

// UpdateUser godoc
// @Summary Update a user
// @Description Overwrite the caller's name, email and password
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body model.UpdateUserRequest true "New user details"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.MessageResponse "Missing fields or email already registered"
// @Failure 403 {object} model.MessageResponse "Missing/invalid token or id mismatch"
// @Failure 404 {object} model.MessageResponse "User not found"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.ownerOf(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.fail(w, r, model.ErrBadRequest, "name, email and password are required")
		return
	}
	if !isValidEmail(req.Email) {
		h.fail(w, r, model.ErrBadRequest, "invalid email format")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.fail(w, r, err, "failed to update user")
		return
	}

	if err := h.users.Update(r.Context(), identity.UserID, req.Name, req.Email, hash); err != nil {
		switch {
		case errors.Is(err, model.ErrConflict):
			h.fail(w, r, err, "email already registered")
		case errors.Is(err, model.ErrNotFound):
			h.fail(w, r, err, "user not found")
		default:
			h.fail(w, r, err, "failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, model.MessageResponse{Message: "user updated successfully"})
}

// Notification handlers

// CreateNotification godoc
// @Summary Submit a notification
// @Description Record an occurrence for a vehicle plate, owned by the caller
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body model.CreateNotificationRequest true "Plate and occurrence"
// @Success 201 {object} model.CreateNotificationResponse
// @Failure 400 {object} model.MessageResponse "Missing fields"
// @Failure 403 {object} model.MessageResponse "Missing or invalid token"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Security BearerAuth
// @Router /notifications [post]
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req model.CreateNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "invalid request body")
		return
	}

	req.Plate = strings.TrimSpace(req.Plate)
	req.Occurrence = strings.TrimSpace(req.Occurrence)
	if req.Plate == "" || req.Occurrence == "" {
		h.fail(w, r, model.ErrBadRequest, "plate and occurrence are required")
		return
	}

	id, err := h.notifications.Create(r.Context(), identity.UserID, req.Plate, req.Occurrence)
	if err != nil {
		h.fail(w, r, err, "failed to create notification")
		return
	}

	h.metrics.NotificationsCreated.Inc()
	respondJSON(w, http.StatusCreated, model.CreateNotificationResponse{
		Message:        "notification created successfully",
		NotificationID: id,
	})
}

// ListSent godoc
// @Summary List sent notifications
// @Description Notifications submitted by the caller, ordered by id
// @Tags Notifications
// @Produce json
// @Success 200 {array} model.Notification
// @Failure 403 {object} model.MessageResponse "Missing or invalid token"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Security BearerAuth
// @Router /notifications/sent [get]
func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		h.fail(w, r, err, "failed to list notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// ListReceived godoc
// @Summary List received notifications
// @Description Every notification not submitted by the caller. There is no recipient model yet, so this is not a real inbox.
// @Tags Notifications
// @Produce json
// @Success 200 {array} model.Notification
// @Failure 403 {object} model.MessageResponse "Missing or invalid token"
// @Failure 500 {object} model.MessageResponse "Server error"
// @Security BearerAuth
// @Router /notifications/received [get]
func (h *Handler) ListReceived(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListNotOwnedBy(r.Context(), identity.UserID)
	if err != nil {
		h.fail(w, r, err, "failed to list notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// System handlers

// Health godoc
// @Summary Health check
// @Description Reports whether the database is reachable
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check: database unreachable")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identity returns the session identity set by the auth gate.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken, "access denied")
		return model.Identity{}, false
	}
	return identity, true
}

// ownerOf additionally requires the {id} path value to name the caller.
func (h *Handler) ownerOf(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return model.Identity{}, false
	}
	if r.PathValue("id") != strconv.FormatInt(identity.UserID, 10) {
		h.fail(w, r, model.ErrForbidden, "access denied")
		return model.Identity{}, false
	}
	return identity, true
}

// isValidEmail performs a basic email validation
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && len(parts[1]) > 0
}
