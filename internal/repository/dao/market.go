package dao

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMarketNotFound = errors.New("market not found")
)

type Market struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"not null"`
	Image       string
	Images      pq.StringArray `gorm:"type:text[]"`
	PrevDate    *time.Time     `gorm:"type:date"`
	NextDate    *time.Time     `gorm:"type:date"`
	Vendors     []Vendor       `gorm:"foreignKey:MarketID"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type MarketSuggestion struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Location  string
	Contact   string
	CreatedAt time.Time `gorm:"not null"`
}

type MarketDAO struct {
	db *gorm.DB
}

func NewMarketDAO(db *gorm.DB) *MarketDAO {
	return &MarketDAO{
		db: db,
	}
}

func (d *MarketDAO) withCatalog(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Preload("Vendors", func(db *gorm.DB) *gorm.DB { return db.Order("vendors.name ASC") }).
		Preload("Vendors.Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.created_at DESC") }).
		Preload("Vendors.Products.Images", orderByPosition)
}

func (d *MarketDAO) FindAll(ctx context.Context) ([]Market, error) {
	var markets []Market

	result := d.withCatalog(ctx).Order("name ASC").Find(&markets)
	if result.Error != nil {
		return nil, result.Error
	}

	return markets, nil
}

func (d *MarketDAO) FindByID(ctx context.Context, id uint) (Market, error) {
	var market Market

	result := d.withCatalog(ctx).First(&market, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Market{}, ErrMarketNotFound
		}

		return Market{}, result.Error
	}

	return market, nil
}

func (d *MarketDAO) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Market{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// Search matches name or location for the type-ahead box.
func (d *MarketDAO) Search(ctx context.Context, term string, limit int) ([]Market, error) {
	var markets []Market

	like := containsPattern(term)
	result := d.db.WithContext(ctx).
		Where("name ILIKE ? OR location ILIKE ?", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&markets)
	if result.Error != nil {
		return nil, result.Error
	}

	return markets, nil
}

// FindScheduled returns markets that carry at least one reference date.
func (d *MarketDAO) FindScheduled(ctx context.Context) ([]Market, error) {
	var markets []Market

	result := d.db.WithContext(ctx).
		Where("prev_date IS NOT NULL OR next_date IS NOT NULL").
		Order("id ASC").
		Find(&markets)
	if result.Error != nil {
		return nil, result.Error
	}

	return markets, nil
}

func (d *MarketDAO) UpdateDates(ctx context.Context, id uint, prev, next time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&Market{}).
		Where("id = ?", id).
		Updates(map[string]any{"prev_date": prev, "next_date": next})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMarketNotFound
	}

	return nil
}

// Upsert inserts the market or refreshes the row with the same name.
func (d *MarketDAO) Upsert(ctx context.Context, market Market) (Market, error) {
	result := d.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "location", "image", "images", "prev_date", "next_date", "updated_at"}),
		}).
		Create(&market)
	if result.Error != nil {
		return Market{}, result.Error
	}

	return market, nil
}

func (d *MarketDAO) InsertSuggestion(ctx context.Context, s MarketSuggestion) (MarketSuggestion, error) {
	result := d.db.WithContext(ctx).Create(&s)
	if result.Error != nil {
		return MarketSuggestion{}, result.Error
	}

	return s, nil
}
