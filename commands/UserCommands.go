package commands

// RegisterCommand represents a command to register a new user.
type RegisterCommand struct {
	FullName string `json:"fullName" validate:"required,notblank,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginCommand represents a command to log in with email and password.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
