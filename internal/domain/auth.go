package domain

// Credential is what the user store hands to the login flow.
type Credential struct {
	UserID       string
	Role         Role
	PasswordHash string
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the authenticated caller of a single request.
type Identity struct {
	UserID string
	Role   Role
}
