package domain

import (
	"time"

	"github.com/localmarkets/marketplace/internal/marketday"
)

type Market struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Image       string              `json:"image"`
	Images      []string            `json:"images"`
	PrevDate    *time.Time          `json:"prevDate"`
	NextDate    *time.Time          `json:"nextDate"`
	Schedule    *marketday.Schedule `json:"schedule,omitempty"`
	Vendors     []Vendor            `json:"vendors,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type MarketSuggestion struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}
