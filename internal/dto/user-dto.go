package dto

type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Base      string `json:"base"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateUserDTO struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,role_code"`
	Base     string `json:"base" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
