package authapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults applied to optional request fields when left empty.
const (
	DefaultCallbackURL   = "/dashboard"
	DefaultResetRedirect = "/auth/reset-password"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError rejects a request before it reaches the transport.
// Fields maps field names to human-readable problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "authapi: invalid request: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is a client-side validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"request": "invalid"}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

// SignInRequest carries email sign-in credentials.
type SignInRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	CallbackURL string `json:"callbackURL,omitempty"`
	RememberMe  bool   `json:"rememberMe"`
}

// Validate checks the request shape. CallbackURL defaults to /dashboard.
func (r *SignInRequest) Validate() error {
	if r.CallbackURL == "" {
		r.CallbackURL = DefaultCallbackURL
	}
	return checkStruct(r)
}

// SignUpRequest carries registration input. ConfirmPassword is checked
// client-side and never serialized.
type SignUpRequest struct {
	Name            string `json:"name"     validate:"required"`
	Email           string `json:"email"    validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"-"        validate:"eqfield=Password"`
	Image           string `json:"image,omitempty"`
	CallbackURL     string `json:"callbackURL,omitempty"`
}

// Validate checks the request shape. CallbackURL defaults to /dashboard.
func (r *SignUpRequest) Validate() error {
	if r.CallbackURL == "" {
		r.CallbackURL = DefaultCallbackURL
	}
	return checkStruct(r)
}

// ForgetPasswordRequest asks the backend to send a reset link.
type ForgetPasswordRequest struct {
	Email      string `json:"email" validate:"required,email"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// Validate checks the request shape. RedirectTo defaults to the reset page.
func (r *ForgetPasswordRequest) Validate() error {
	if r.RedirectTo == "" {
		r.RedirectTo = DefaultResetRedirect
	}
	return checkStruct(r)
}

// ResetPasswordRequest completes a password reset with the emailed token.
type ResetPasswordRequest struct {
	Token           string `json:"token"       validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"-"           validate:"eqfield=NewPassword"`
}

// Validate checks the request shape.
func (r *ResetPasswordRequest) Validate() error {
	return checkStruct(r)
}

// SocialSignInRequest starts an OAuth flow with a named provider.
// The provider selects the endpoint path; only the callback travels
// in the body.
type SocialSignInRequest struct {
	Provider    string `json:"-"           validate:"required,alphanum"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// Validate checks the request shape. CallbackURL defaults to /dashboard.
func (r *SocialSignInRequest) Validate() error {
	if r.CallbackURL == "" {
		r.CallbackURL = DefaultCallbackURL
	}
	return checkStruct(r)
}
