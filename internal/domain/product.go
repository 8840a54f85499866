package domain

import (
	"strings"
	"time"
)

type Tag string

const (
	TagFruit        Tag = "FRUIT"
	TagVegetables   Tag = "VEGETABLES"
	TagBread        Tag = "BREAD"
	TagBakedGoods   Tag = "BAKED_GOODS"
	TagMeat         Tag = "MEAT"
	TagFish         Tag = "FISH"
	TagDairy        Tag = "DAIRY"
	TagEggs         Tag = "EGGS"
	TagHoney        Tag = "HONEY"
	TagPreserves    Tag = "PRESERVES"
	TagDrinks       Tag = "DRINKS"
	TagPreparedFood Tag = "PREPARED_FOOD"
	TagPlants       Tag = "PLANTS"
	TagFlowers      Tag = "FLOWERS"
	TagCrafts       Tag = "CRAFTS"
	TagClothing     Tag = "CLOTHING"
	TagOther        Tag = "OTHER"
)

var AllTags = []Tag{
	TagFruit, TagVegetables, TagBread, TagBakedGoods, TagMeat, TagFish, TagDairy,
	TagEggs, TagHoney, TagPreserves, TagDrinks, TagPreparedFood, TagPlants,
	TagFlowers, TagCrafts, TagClothing, TagOther,
}

// ParseTag accepts any casing and surrounding whitespace.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllTags {
		if t == known {
			return t, true
		}
	}

	return "", false
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	Tags        []Tag     `json:"tags"`
	VendorID    uint      `json:"vendorId"`
	Vendor      *Vendor   `json:"vendor,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImageURLs lists the primary image followed by the additional ones.
func (p Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images)+1)
	if p.Image != "" {
		urls = append(urls, p.Image)
	}

	return append(urls, p.Images...)
}

type ProductFilter struct {
	UserID   uint
	MarketID uint
}

type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{Total: total, Pages: pages, Page: page, Limit: limit}
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
