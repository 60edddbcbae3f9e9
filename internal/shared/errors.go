package shared

import "fmt"

// InvalidCredentialsMessage is the literal text shown to a user whose login failed.
const InvalidCredentialsMessage = "Invalid credentials"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrMalformedToken     = fmt.Errorf("malformed session token")
	ErrTokenExpired       = fmt.Errorf("session token expired")
	ErrForbidden          = fmt.Errorf("admin role required")

	// Remote module errors
	ErrRemoteLoad         = fmt.Errorf("remote module failed to load")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAPIRequest         = fmt.Errorf("API request failed")

	// Catalog errors
	ErrSongNotFound = fmt.Errorf("song not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
