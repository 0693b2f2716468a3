package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/lalaavipsha/microservices-platform/internal/apierror"
	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/httpx"
	"github.com/lalaavipsha/microservices-platform/internal/store"
)

// Handler implements registration, login and token validation. Users are
// stored keyed by email, which is how registration enforces uniqueness.
type Handler struct {
	users    *store.Store[domain.User]
	tokens   *TokenIssuer
	logger   *slog.Logger
	attempts metric.Int64Counter
}

func NewHandler(users *store.Store[domain.User], tokens *TokenIssuer, logger *slog.Logger) (*Handler, error) {
	meter := otel.Meter("auth_service")
	attempts, err := meter.Int64Counter(
		"auth_service_auth_attempts",
		metric.WithDescription("Auth attempts"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		attempts: attempts,
	}, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		h.recordAttempt(r, "register", "invalid_request")
		httpx.WriteError(w, h.logger, apierror.Validation("Email and password required"))
		return
	}

	if _, exists := h.users.Get(req.Email); exists {
		h.recordAttempt(r, "register", "user_exists")
		httpx.WriteError(w, h.logger, apierror.Conflict("User already exists"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.recordAttempt(r, "register", "error")
		h.logger.Error("failed to hash password", "error", err)
		httpx.WriteError(w, h.logger, apierror.Internal("Registration failed"))
		return
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	h.users.Put(user.Email, user)

	h.recordAttempt(r, "register", "success")
	h.logger.Info("user registered", "email", user.Email, "user_id", user.ID)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		h.recordAttempt(r, "login", "invalid_request")
		httpx.WriteError(w, h.logger, apierror.Validation("Email and password required"))
		return
	}

	user, ok := h.users.Get(req.Email)
	if !ok {
		h.recordAttempt(r, "login", "user_not_found")
		httpx.WriteError(w, h.logger, apierror.Auth("Invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		h.recordAttempt(r, "login", "wrong_password")
		httpx.WriteError(w, h.logger, apierror.Auth("Invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.recordAttempt(r, "login", "error")
		h.logger.Error("failed to sign token", "error", err)
		httpx.WriteError(w, h.logger, apierror.Internal("Login failed"))
		return
	}

	h.recordAttempt(r, "login", "success")
	h.logger.Info("user logged in", "email", user.Email, "user_id", user.ID)
	httpx.WriteJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
		"user_id": user.ID,
	})
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleValidate is a pure function of the presented credential and the
// current time: valid, expired and invalid are distinct terminal
// outcomes.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.WriteJSON(w, h.logger, http.StatusUnauthorized, validateResponse{Valid: false, Error: "No token provided"})
		return
	}

	claims, err := h.tokens.Validate(strings.TrimPrefix(authHeader, "Bearer "))
	switch {
	case err == nil:
		httpx.WriteJSON(w, h.logger, http.StatusOK, validateResponse{
			Valid:  true,
			UserID: claims.UserID,
			Email:  claims.Email,
		})
	case errors.Is(err, ErrTokenExpired):
		httpx.WriteJSON(w, h.logger, http.StatusUnauthorized, validateResponse{Valid: false, Error: "Token expired"})
	default:
		httpx.WriteJSON(w, h.logger, http.StatusUnauthorized, validateResponse{Valid: false, Error: "Invalid token"})
	}
}

func (h *Handler) recordAttempt(r *http.Request, attemptType, result string) {
	h.attempts.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("type", attemptType),
		attribute.String("result", result),
	))
}
