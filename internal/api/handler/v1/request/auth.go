package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/localmarkets/marketplace/internal/domain"
)

const (
	phoneRegexPattern = `^\+[1-9]\d{1,14}$`
	minPasswordLength = 8
	maxPasswordLength = 72
)

var phoneExp = regexp.MustCompile(phoneRegexPattern)

type RegisterRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	MarketID uint   `json:"marketId"`
	Website  string `json:"website,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneExp)),
		validation.Field(&req.Password, validation.Required, validation.RuneLength(minPasswordLength, maxPasswordLength)),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.MarketID, validation.Required),
		validation.Field(&req.Website, is.URL),
		validation.Field(&req.Email, is.Email),
	)
}

func (req *RegisterRequest) ToDomain() domain.Registration {
	return domain.Registration{
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		MarketID: req.MarketID,
		Website:  req.Website,
		Email:    req.Email,
	}
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneExp)),
		validation.Field(&req.Password, validation.Required),
	)
}
