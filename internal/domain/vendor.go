package domain

import "time"

type Vendor struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	GoodsSold []string  `json:"goodsSold"`
	MarketID  uint      `json:"marketId"`
	Market    *Market   `json:"market,omitempty"`
	UserID    uint      `json:"userId"`
	Products  []Product `json:"products,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Dashboard struct {
	Vendor       Vendor `json:"vendor"`
	Market       Market `json:"market"`
	ProductCount int64  `json:"productCount"`
}
