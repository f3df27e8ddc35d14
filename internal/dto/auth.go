package dto

// RegisterRequest creates a new inspector account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	FullName string `json:"fullName" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required,min=8"`
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// LoginResponse carries the issued token and its subject.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	User      UserProfile `json:"user"`
}
