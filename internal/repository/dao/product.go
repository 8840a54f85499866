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
	ErrProductNotFound = errors.New("product not found")
)

type Product struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"type:numeric(10,2);not null;default:0"`
	Image       string
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	VendorID    uint           `gorm:"not null;index"`
	Vendor      Vendor         `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	URL       string `gorm:"not null"`
	Position  int    `gorm:"not null"`
}

// ProductQuery narrows product listings; zero fields are ignored.
type ProductQuery struct {
	UserID   uint
	MarketID uint
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (d *ProductDAO) withDisplay(db *gorm.DB) *gorm.DB {
	return db.Preload("Vendor.Market").Preload("Images", orderByPosition)
}

// ownedBy restricts a product query to rows whose vendor belongs to userID.
func (d *ProductDAO) ownedBy(db *gorm.DB, userID uint) *gorm.DB {
	return db.Where("products.vendor_id IN (?)", d.db.Model(&Vendor{}).Select("id").Where("user_id = ?", userID))
}

func (d *ProductDAO) searchScope(ctx context.Context, term string, tokens []string) *gorm.DB {
	q := d.db.WithContext(ctx).
		Model(&Product{}).
		Joins("JOIN vendors ON vendors.id = products.vendor_id")

	if term != "" {
		like := containsPattern(term)
		q = q.Where(
			"products.name ILIKE ? OR products.description ILIKE ? OR products.tags && ? OR vendors.name ILIKE ?",
			like, like, pq.StringArray(tokens), like,
		)
	}

	return q
}

// Search returns one page of products matching term plus the total number
// of matches. An empty term matches everything.
func (d *ProductDAO) Search(ctx context.Context, term string, tokens []string, offset, limit int) ([]Product, int64, error) {
	var total int64
	if err := d.searchScope(ctx, term, tokens).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []Product{}
	if total == 0 {
		return products, 0, nil
	}

	result := d.withDisplay(d.searchScope(ctx, term, tokens)).
		Select("products.*").
		Order("products.created_at DESC, products.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return products, total, nil
}

func (d *ProductDAO) FindAll(ctx context.Context, query ProductQuery) ([]Product, error) {
	q := d.withDisplay(d.db.WithContext(ctx).Model(&Product{}))

	if query.UserID != 0 {
		q = d.ownedBy(q, query.UserID)
	}
	if query.MarketID != 0 {
		q = q.Where("products.vendor_id IN (?)", d.db.Model(&Vendor{}).Select("id").Where("market_id = ?", query.MarketID))
	}

	products := []Product{}
	result := q.Order("products.created_at DESC, products.id DESC").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

func (d *ProductDAO) FindByID(ctx context.Context, id uint) (Product, error) {
	var product Product

	result := d.withDisplay(d.db.WithContext(ctx)).First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

// FindOwned loads a product only if it belongs to userID's vendor; any other
// product is reported as not found.
func (d *ProductDAO) FindOwned(ctx context.Context, id, userID uint) (Product, error) {
	var product Product

	q := d.ownedBy(d.db.WithContext(ctx).Preload("Images", orderByPosition), userID)
	result := q.Where("products.id = ?", id).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := product.Images
		product.Images = nil

		if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
			return err
		}

		product.Images = images
		return insertImages(tx, product.ID, product.Images)
	})
	if err != nil {
		return Product{}, err
	}

	return product, nil
}

// Update writes the scalar fields of an owned product. When replaceImages is
// set the stored image rows are swapped for product.Images.
func (d *ProductDAO) Update(ctx context.Context, userID uint, product Product, replaceImages bool) (Product, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := d.ownedBy(tx.Model(&Product{}), userID).
			Where("products.id = ?", product.ID).
			Updates(map[string]any{
				"name":        product.Name,
				"description": product.Description,
				"price":       product.Price,
				"image":       product.Image,
				"tags":        product.Tags,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if !replaceImages {
			return nil
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&ProductImage{}).Error; err != nil {
			return err
		}

		return insertImages(tx, product.ID, product.Images)
	})
	if err != nil {
		return Product{}, err
	}

	return product, nil
}

// DeleteOwned removes an owned product together with its image rows and
// returns the deleted row so callers can release its media.
func (d *ProductDAO) DeleteOwned(ctx context.Context, id, userID uint) (Product, error) {
	var product Product

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := d.ownedBy(tx.Preload("Images", orderByPosition), userID)
		if err := q.Where("products.id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}

			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&ProductImage{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Product{}, product.ID).Error
	})
	if err != nil {
		return Product{}, err
	}

	return product, nil
}

func insertImages(tx *gorm.DB, productID uint, images []ProductImage) error {
	if len(images) == 0 {
		return nil
	}

	for i := range images {
		images[i].ID = 0
		images[i].ProductID = productID
		images[i].Position = i
	}

	return tx.Create(&images).Error
}
