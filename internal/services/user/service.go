package user

import (
	"errors"

	"payvault/internal/models"
	"payvault/internal/repositories"
	"payvault/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrWeakPassword  = errors.New("password must be at least 8 characters and contain special characters")
	ErrMissingFields = errors.New("name, email and password are required")
)

type Service interface {
	Register(name, email, password string) (*models.User, error)
}

type service struct {
	userRepo repositories.UserRepository
}

func NewService(userRepo repositories.UserRepository) Service {
	return &service{userRepo: userRepo}
}

// Register provisions the account and its wallet in one transaction; the
// wallet exists exactly once per user from the moment the account does.
func (s *service) Register(name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < 8 || !validation.HasSpecialChar(password) {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Password:     string(hashedPassword),
		Role:         "user",
		TokenVersion: 1,
	}
	if err := s.userRepo.CreateWithWallet(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}
