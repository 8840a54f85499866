package domain

import "time"

type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registration carries everything needed to create a User and its Vendor.
type Registration struct {
	Phone    string
	Password string
	Name     string
	MarketID uint
	Website  string
	Email    string
}
