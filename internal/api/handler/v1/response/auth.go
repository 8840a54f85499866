package response

import "github.com/localmarkets/marketplace/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type RegisterResponse struct {
	ID    uint   `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}
