package dto

// LoginRequest is the body of the per-tenant login endpoints.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=64"`
}

// ProfileLoginRequest is the body of the shared login endpoint.
type ProfileLoginRequest struct {
	Profile  string `json:"profile" validate:"required,oneof=admin garage"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=64"`
}

// SignupRequest is the body of the garage self-registration endpoint.
type SignupRequest struct {
	GarageName     string `json:"garage-name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,max=255,email"`
	Username       string `json:"username" validate:"required,min=3,max=25,username"`
	Password       string `json:"password" validate:"required,min=8,max=64,bcryptlen"`
	RepeatPassword string `json:"repeatPassword" validate:"required,eqfield=Password"`
}

// UpdatePasswordRequest is the body of the password update endpoints.
type UpdatePasswordRequest struct {
	CurrentPassword   string `json:"currentPassword" validate:"required,max=64"`
	NewPassword       string `json:"newPassword" validate:"required,min=8,max=64,bcryptlen"`
	RepeatNewPassword string `json:"repeatNewPassword" validate:"required,eqfield=NewPassword"`
}

// SetEnabledRequest toggles whether a garage account may use its tokens.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Session carries an issued bearer token.
type Session struct {
	Token string `json:"token"`
}

// AuthResult is the body returned by login and signup.
type AuthResult struct {
	State   State             `json:"state"`
	Message string            `json:"message"`
	Field   map[string]string `json:"field,omitempty"`
	Session *Session          `json:"session,omitempty"`
}

// State reports how far a form submission got.
type State int

const (
	StateInvalid State = iota + 1
	StateFailed
	StateOK
)
