package repository

import (
	"context"
	"fmt"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository/dao"
)

var (
	ErrUserPhoneExists = dao.ErrUserPhoneExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	InsertWithVendor(ctx context.Context, user dao.User, vendor dao.Vendor) (dao.User, dao.Vendor, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByPhone(ctx context.Context, phone string) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

// CreateWithVendor stores a new user together with its vendor profile.
func (r *UserRepository) CreateWithVendor(ctx context.Context, user domain.User, vendor domain.Vendor) (domain.User, domain.Vendor, error) {
	createdUser, createdVendor, err := r.dao.InsertWithVendor(ctx, dao.User{
		Name:     user.Name,
		Phone:    user.Phone,
		Email:    user.Email,
		Password: user.Password,
	}, vendorDomainToDao(vendor))
	if err != nil {
		return domain.User{}, domain.Vendor{}, fmt.Errorf("r.dao.InsertWithVendor -> %w", err)
	}

	return userDaoToDomain(createdUser), vendorDaoToDomain(createdVendor), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	found, err := r.dao.FindByPhone(ctx, phone)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByPhone -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func userDaoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
