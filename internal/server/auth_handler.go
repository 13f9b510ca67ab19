package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/types"
)

// AuthHandler issues bearer tokens to callers holding the shared API key.
type AuthHandler struct {
	jwtService *JWTService
	validator  *validator.Validate
	log        *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(jwtService *JWTService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		validator:  validator.New(),
		log:        log,
	}
}

// IssueToken handles token requests. The body is optional; without a client_id a
// random one is assigned so each token gets its own rate-limit budget.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, apperr.Client(apperr.CodeInvalidInput, "Invalid request body."))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.writeError(w, apperr.Validation(extractValidationErrors(err)))
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = "client-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}

	token, expiresAt, err := h.jwtService.GenerateToken(clientID)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		h.writeError(w, apperr.Wrap(apperr.KindInternal, apperr.CodeInternal, "failed to generate token", err))
		return
	}

	h.log.Info("token issued", zap.String("client_id", clientID), zap.Time("expires_at", expiresAt))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(types.TokenResponse{
		Token:     token,
		ClientID:  clientID,
		ExpiresAt: expiresAt,
	}); err != nil {
		// Log error but response already sent
		h.log.Warn("error encoding token response", zap.Error(err))
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:   apperr.CodeOf(err),
		Message: apperr.MessageOf(err),
	})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
