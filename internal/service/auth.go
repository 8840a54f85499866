package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository"
)

var (
	ErrPhoneExists    = repository.ErrUserPhoneExists
	ErrMarketNotFound = repository.ErrMarketNotFound
	ErrWrongPassword  = errors.New("wrong password")
)

type AuthUserRepository interface {
	CreateWithVendor(ctx context.Context, user domain.User, vendor domain.Vendor) (domain.User, domain.Vendor, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
}

type MarketChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type AuthService struct {
	repo    AuthUserRepository
	markets MarketChecker
}

func NewAuthService(repo AuthUserRepository, markets MarketChecker) *AuthService {
	return &AuthService{
		repo:    repo,
		markets: markets,
	}
}

// Register creates a user and the vendor profile bound to reg.MarketID.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if err := s.checkPhoneExists(ctx, reg.Phone); err != nil {
		return domain.User{}, err
	}

	ok, err := s.markets.Exists(ctx, reg.MarketID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.markets.Exists -> %w", err)
	}
	if !ok {
		return domain.User{}, ErrMarketNotFound
	}

	hashedPassword, err := hashPassword(reg.Password)
	if err != nil {
		return domain.User{}, err
	}

	user, _, err := s.repo.CreateWithVendor(ctx, domain.User{
		Name:     reg.Name,
		Phone:    reg.Phone,
		Email:    reg.Email,
		Password: hashedPassword,
	}, domain.Vendor{
		Name:      reg.Name,
		Phone:     reg.Phone,
		Email:     reg.Email,
		Website:   reg.Website,
		GoodsSold: []string{},
		MarketID:  reg.MarketID,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.CreateWithVendor -> %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, phone, password string) (domain.User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByPhone -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (s *AuthService) checkPhoneExists(ctx context.Context, phone string) error {
	_, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return ErrPhoneExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByPhone -> %w", err)
	}

	return nil
}
