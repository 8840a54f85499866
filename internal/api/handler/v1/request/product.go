package request

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
)

// maxPrice is the first value that no longer fits numeric(10,2).
const maxPrice = 1e8

// maxPage keeps the page offset within int range for any accepted limit.
const maxPage = math.MaxInt32

var (
	errInvalidPage  = errors.New("page must be a positive integer")
	errInvalidLimit = errors.New("limit must be a positive integer")
)

// ProductForm is the multipart body of product create and update calls.
type ProductForm struct {
	Name        string                  `json:"name" form:"name"`
	Description string                  `json:"description" form:"description"`
	Price       string                  `json:"price" form:"price"`
	Tags        []string                `json:"tags" form:"tags"`
	Images      []*multipart.FileHeader `json:"-" form:"images"`

	price float64
	tags  []domain.Tag
}

func (req *ProductForm) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Price, validation.Required),
	)
	if err != nil {
		return err
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(req.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return validation.Errors{"price": errors.New("must be a non-negative number")}
	}
	price = math.Round(price*100) / 100
	if price >= maxPrice {
		return validation.Errors{"price": fmt.Errorf("must be less than %.0f", float64(maxPrice))}
	}
	req.price = price

	req.tags = req.tags[:0]
	for _, raw := range splitTags(req.Tags) {
		tag, ok := domain.ParseTag(raw)
		if !ok {
			return validation.Errors{"tags": fmt.Errorf("unknown tag %q", raw)}
		}
		req.tags = append(req.tags, tag)
	}

	return nil
}

// ToDomain must be called after a successful Validate.
func (req *ProductForm) ToDomain(id uint) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.price,
		Tags:        req.tags,
	}
}

// Files opens the uploaded images. The returned closer releases all of them.
func (req *ProductForm) Files() ([]media.File, func(), error) {
	files := make([]media.File, 0, len(req.Images))
	opened := make([]multipart.File, 0, len(req.Images))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range req.Images {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("fh.Open(%s) -> %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, media.File{Name: fh.Filename, Size: fh.Size, Body: f})
	}

	return files, closeAll, nil
}

// splitTags accepts repeated fields as well as comma separated values.
func splitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

type SearchQuery struct {
	Q     string
	Page  int
	Limit int
}

// ParseSearchQuery reads q, page and limit. Missing values take their
// defaults; present but malformed values are rejected.
func ParseSearchQuery(q, page, limit string, defaultLimit int) (SearchQuery, error) {
	query := SearchQuery{Q: strings.TrimSpace(q), Page: 1, Limit: defaultLimit}

	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 || p > maxPage {
			return SearchQuery{}, errInvalidPage
		}
		query.Page = p
	}

	if limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l < 1 {
			return SearchQuery{}, errInvalidLimit
		}
		query.Limit = l
	}

	return query, nil
}
