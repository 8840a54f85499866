package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

type GoodRequest struct {
	Item string `json:"item"`
}

func (req *GoodRequest) Validate() error {
	req.Item = strings.TrimSpace(req.Item)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Item, validation.Required, validation.Length(1, 80)),
	)
}
