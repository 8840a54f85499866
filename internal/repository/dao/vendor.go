package dao

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrVendorNotFound = errors.New("vendor not found")
)

type Vendor struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Phone     string `gorm:"uniqueIndex;not null"`
	Email     string
	Website   string
	GoodsSold pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	MarketID  uint           `gorm:"not null;index"`
	Market    Market         `gorm:"foreignKey:MarketID;constraint:OnDelete:RESTRICT"`
	UserID    uint           `gorm:"not null;uniqueIndex"`
	User      User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Products  []Product      `gorm:"foreignKey:VendorID"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type VendorDAO struct {
	db *gorm.DB
}

func NewVendorDAO(db *gorm.DB) *VendorDAO {
	return &VendorDAO{
		db: db,
	}
}

func (d *VendorDAO) FindByUserID(ctx context.Context, userID uint) (Vendor, error) {
	var vendor Vendor

	result := d.db.WithContext(ctx).Preload("Market").First(&vendor, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Vendor{}, ErrVendorNotFound
		}

		return Vendor{}, result.Error
	}

	return vendor, nil
}

func (d *VendorDAO) FindByPhone(ctx context.Context, phone string) (Vendor, error) {
	var vendor Vendor

	result := d.db.WithContext(ctx).First(&vendor, "phone = ?", phone)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Vendor{}, ErrVendorNotFound
		}

		return Vendor{}, result.Error
	}

	return vendor, nil
}

// AddGood appends item to the vendor's goods list unless it is already there.
func (d *VendorDAO) AddGood(ctx context.Context, userID uint, item string) error {
	result := d.db.WithContext(ctx).
		Model(&Vendor{}).
		Where("user_id = ? AND NOT (? = ANY(goods_sold))", userID, item).
		Update("goods_sold", gorm.Expr("array_append(goods_sold, ?)", item))
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (d *VendorDAO) RemoveGood(ctx context.Context, userID uint, item string) error {
	result := d.db.WithContext(ctx).
		Model(&Vendor{}).
		Where("user_id = ?", userID).
		Update("goods_sold", gorm.Expr("array_remove(goods_sold, ?)", item))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVendorNotFound
	}

	return nil
}

func (d *VendorDAO) CountProducts(ctx context.Context, vendorID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Product{}).Where("vendor_id = ?", vendorID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
