package user

import (
	"errors"
	"fmt"

	"github.com/beconnected/beconnected-server/cmd/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ResolveByUsernameOrEmail looks the identifier up as a username first, then
// as an email. Login accepts either.
func (s *Service) ResolveByUsernameOrEmail(identifier string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", identifier).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.db.Where("email = ?", identifier).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: username/email %s does not exist", ErrUserNotFound, identifier)
	}
	return nil, err
}
