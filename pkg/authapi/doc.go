// Package authapi is a typed façade over the remote auth service.
//
// Each operation has a fixed endpoint path and a fixed request body shape:
//
//	SignInEmail     POST auth/sign-in/email      email, password, callbackURL, rememberMe
//	SignUpEmail     POST auth/sign-up/email      email, password, name, image?, callbackURL
//	SignOut         POST auth/sign-out           (empty)
//	GetSession      GET  auth/get-session        (empty)
//	ForgetPassword  POST auth/forget-password    email, redirectTo
//	ResetPassword   POST auth/reset-password     token, newPassword
//	SignInSocial    POST auth/sign-in/{provider} callbackURL
//
// Requests are validated before dispatch: email format, password minimum
// length, confirmation field equality. A request that fails validation is
// rejected with [*ValidationError] and never reaches the transport.
// Optional fields receive documented defaults (callbackURL "/dashboard",
// reset redirect "/auth/reset-password").
//
// The façade itself holds no state and performs no caching or retries; see
// pkg/query and pkg/authstate for the cached operation layer built on top.
package authapi
