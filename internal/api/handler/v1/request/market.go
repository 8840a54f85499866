package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/localmarkets/marketplace/internal/domain"
)

type SuggestMarketRequest struct {
	Name     string `json:"name" form:"name"`
	Location string `json:"location" form:"location"`
	Contact  string `json:"contact" form:"contact"`
}

func (req *SuggestMarketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&req.Location, validation.Length(0, 200)),
		validation.Field(&req.Contact, validation.Length(0, 200)),
	)
}

func (req *SuggestMarketRequest) ToDomain() domain.MarketSuggestion {
	return domain.MarketSuggestion{
		Name:     req.Name,
		Location: req.Location,
		Contact:  req.Contact,
	}
}
