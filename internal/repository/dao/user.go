package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserPhoneExists = errors.New("phone number already registered")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	Phone    string `gorm:"uniqueIndex;not null"`
	Email    string
	Password string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

// InsertWithVendor creates the credential holder and its vendor profile in a
// single transaction; neither row exists if either insert fails.
func (d *UserDAO) InsertWithVendor(ctx context.Context, user User, vendor Vendor) (User, Vendor, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		vendor.UserID = user.ID
		return tx.Omit(clause.Associations).Create(&vendor).Error
	})
	if err != nil {
		if isUniqueViolation(err, "phone") {
			return User{}, Vendor{}, ErrUserPhoneExists
		}

		return User{}, Vendor{}, err
	}

	return user, vendor, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByPhone(ctx context.Context, phone string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "phone = ?", phone)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}
