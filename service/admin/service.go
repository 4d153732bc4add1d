package admin

import (
	"errors"
	"log"
	"strings"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/beconnected/beconnected-server/service/connection"
	"github.com/beconnected/beconnected-server/service/job"
	"github.com/beconnected/beconnected-server/service/post"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("User not found")
	ErrUnsupportedFormat = errors.New("Unsupported format")
)

// Service aggregates a user's profile and cross-entity data for export. It
// fans out to the post, connection and job services per user.
type Service struct {
	db          *gorm.DB
	posts       *post.Service
	connections *connection.Service
	jobs        *job.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		posts:       post.NewService(db),
		connections: connection.NewService(db),
		jobs:        job.NewService(db),
	}
}

func (s *Service) GetAllUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Find(&users).Error
	return users, err
}

func (s *Service) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SearchUsers matches the query case-insensitively against username, first
// name and last name. The admin path passes no excluded user id, mirroring
// the behavior existing callers rely on.
func (s *Service) SearchUsers(query string) ([]models.User, error) {
	return s.searchUsers(query, nil)
}

func (s *Service) searchUsers(query string, excludeUserID *uint) ([]models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	q := s.db.Where(
		"(LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)",
		pattern, pattern, pattern,
	)
	if excludeUserID != nil {
		q = q.Where("id <> ?", *excludeUserID)
	}

	var users []models.User
	err := q.Find(&users).Error
	return users, err
}

// ExportUserData serializes a full snapshot of one user in the requested
// format ("json" or "xml", case-insensitive).
func (s *Service) ExportUserData(userID uint, format string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	snapshot := s.buildSnapshot(user)
	return serialize(snapshot, format)
}

// ExportAllUsersData serializes snapshots of every user. The walk is
// sequential and unpaginated.
func (s *Service) ExportAllUsersData(format string) (string, error) {
	users, err := s.GetAllUsers()
	if err != nil {
		return "", err
	}

	snapshots := make([]userSnapshot, 0, len(users))
	for i := range users {
		snapshots = append(snapshots, s.buildSnapshot(&users[i]))
	}

	// A bare slice has no XML document element, so bulk XML exports get a
	// <users> wrapper.
	if strings.EqualFold(format, "xml") {
		return serialize(usersExport{Users: snapshots}, format)
	}
	return serialize(snapshots, format)
}

// ExportUserDataCompat keeps the legacy contract: the result is always a
// string, with failures rendered as "Error exporting user data: {message}".
func (s *Service) ExportUserDataCompat(userID uint, format string) string {
	out, err := s.ExportUserData(userID, format)
	if err != nil {
		log.Printf("Error exporting user data: %v", err)
		return "Error exporting user data: " + err.Error()
	}
	return out
}

// ExportAllUsersDataCompat is the bulk counterpart of ExportUserDataCompat.
func (s *Service) ExportAllUsersDataCompat(format string) string {
	out, err := s.ExportAllUsersData(format)
	if err != nil {
		log.Printf("Error exporting users data: %v", err)
		return "Error exporting users data: " + err.Error()
	}
	return out
}
