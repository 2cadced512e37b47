package dto

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// RefreshRequest payload for PUT /refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=4096"`
}

// RegisterRequest payload for POST /register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// TokenPairResponse is returned by a successful login.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse describes a created user. It never includes the password hash.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IdentityResponse echoes the authenticated caller.
type IdentityResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
