package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TokenRequest is the optional body of a bearer-token request.
type TokenRequest struct {
	ClientID string `json:"client_id,omitempty" validate:"omitempty,max=64,alphanum"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ScoreForm is the validated, non-file part of a scoring request.
type ScoreForm struct {
	TopK int `validate:"gte=0,lte=20"`
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ScoreForm using the validator.
func (f *ScoreForm) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}
