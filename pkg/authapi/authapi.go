package authapi

import (
	"context"

	"github.com/authfold/authfold/pkg/apiclient"
)

// Endpoint paths relative to the client's base URL.
const (
	pathSignInEmail    = "auth/sign-in/email"
	pathSignUpEmail    = "auth/sign-up/email"
	pathSignOut        = "auth/sign-out"
	pathGetSession     = "auth/get-session"
	pathForgetPassword = "auth/forget-password"
	pathResetPassword  = "auth/reset-password"
	pathSignInSocial   = "auth/sign-in/"
)

// Service maps named auth operations onto transport calls. It is stateless:
// no retries, no caching, no side effects beyond the HTTP request itself.
type Service struct {
	client *apiclient.Client
}

// New creates a Service on top of the given transport.
func New(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// SignInEmail authenticates with email and password.
// The backend sets the session cookie on the transport's jar.
func (s *Service) SignInEmail(ctx context.Context, req SignInRequest) (SessionRecord, error) {
	if err := req.Validate(); err != nil {
		return SessionRecord{}, err
	}
	var rec SessionRecord
	if err := s.client.Post(ctx, pathSignInEmail, req, &rec); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// SignUpEmail registers a new account and signs it in.
func (s *Service) SignUpEmail(ctx context.Context, req SignUpRequest) (SessionRecord, error) {
	if err := req.Validate(); err != nil {
		return SessionRecord{}, err
	}
	var rec SessionRecord
	if err := s.client.Post(ctx, pathSignUpEmail, req, &rec); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// SignOut terminates the current session.
func (s *Service) SignOut(ctx context.Context) error {
	return s.client.Post(ctx, pathSignOut, nil, nil)
}

// GetSession fetches the current session. An anonymous visitor receives a
// zero SessionRecord without error only if the backend responds 2xx with an
// empty body; error responses surface as normalized transport errors.
func (s *Service) GetSession(ctx context.Context) (SessionRecord, error) {
	var rec SessionRecord
	if err := s.client.Get(ctx, pathGetSession, &rec); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// ForgetPassword asks the backend to email a password reset link.
func (s *Service) ForgetPassword(ctx context.Context, req ForgetPasswordRequest) (StatusResponse, error) {
	if err := req.Validate(); err != nil {
		return StatusResponse{}, err
	}
	var out StatusResponse
	if err := s.client.Post(ctx, pathForgetPassword, req, &out); err != nil {
		return StatusResponse{}, err
	}
	return out, nil
}

// ResetPassword sets a new password using the token from the reset email.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (StatusResponse, error) {
	if err := req.Validate(); err != nil {
		return StatusResponse{}, err
	}
	var out StatusResponse
	if err := s.client.Post(ctx, pathResetPassword, req, &out); err != nil {
		return StatusResponse{}, err
	}
	return out, nil
}

// SignInSocial starts an OAuth flow. The response carries the provider
// authorization URL; navigating there is the caller's responsibility.
func (s *Service) SignInSocial(ctx context.Context, req SocialSignInRequest) (SocialRedirect, error) {
	if err := req.Validate(); err != nil {
		return SocialRedirect{}, err
	}
	var out SocialRedirect
	if err := s.client.Post(ctx, pathSignInSocial+req.Provider, req, &out); err != nil {
		return SocialRedirect{}, err
	}
	return out, nil
}
