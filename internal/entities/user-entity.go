package entities

import (
	"equiptrack/pkg/types"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Base         string `json:"base"`
	PasswordHash string `json:"-"`

	types.BaseEntity
}
