package client

import "time"

type Schedule struct {
	Interval      int       `json:"interval"`
	LastMarketDay time.Time `json:"lastMarketDay"`
	NextMarketDay time.Time `json:"nextMarketDay"`
}

type Market struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Image       string     `json:"image"`
	Images      []string   `json:"images"`
	PrevDate    *time.Time `json:"prevDate"`
	NextDate    *time.Time `json:"nextDate"`
	Schedule    *Schedule  `json:"schedule,omitempty"`
	Vendors     []Vendor   `json:"vendors,omitempty"`
}

type Vendor struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Website   string   `json:"website"`
	GoodsSold []string `json:"goodsSold"`
	MarketID  uint     `json:"marketId"`
	Market    *Market  `json:"market,omitempty"`
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	VendorID    uint      `json:"vendorId"`
	Vendor      *Vendor   `json:"vendor,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
