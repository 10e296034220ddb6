package model

// Identity is the authoritative identity returned by the backend for a valid
// credential.
type Identity struct {
	Role        Role
	UserID      string
	DisplayName string
}

// LoginRequest is what the login form submits.
type LoginRequest struct {
	Role     Role
	UserID   string
	Password string
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Identity
	AccessToken string
	TokenType   string
	NextPath    string
}
