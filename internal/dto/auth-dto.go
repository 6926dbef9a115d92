package dto

// LoginDTO is the mock role-selection login: the client picks a user from
// the public user list and sends its id. No credential check by design.
type LoginDTO struct {
	UserID string `json:"user_id" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponseDTO struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         ShortUserDTO `json:"user"`
}

type ShortUserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Base string `json:"base"`
}
