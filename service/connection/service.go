package connection

import (
	"errors"
	"fmt"

	"github.com/beconnected/beconnected-server/cmd/models"
	"gorm.io/gorm"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrAlreadyConnected   = errors.New("connection already exists between these users")
	ErrSelfConnection     = errors.New("cannot connect to yourself")
	ErrNotReceiver        = errors.New("only the request receiver can respond")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RequestConnection creates a pending request. One row exists per user pair
// regardless of direction.
func (s *Service) RequestConnection(requesterID, receiverID uint) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, ErrSelfConnection
	}

	var receiver models.User
	if err := s.db.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found with id %d", receiverID)
		}
		return nil, err
	}

	var existing models.Connection
	err := s.db.Where(
		"(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
		requesterID, receiverID, receiverID, requesterID,
	).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyConnected
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conn := models.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
	}
	if err := s.db.Create(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Service) AcceptConnection(connectionID, userID uint) error {
	return s.respond(connectionID, userID, models.ConnectionAccepted)
}

func (s *Service) DeclineConnection(connectionID, userID uint) error {
	return s.respond(connectionID, userID, models.ConnectionDeclined)
}

func (s *Service) respond(connectionID, userID uint, status string) error {
	var conn models.Connection
	if err := s.db.First(&conn, connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w with id %d", ErrConnectionNotFound, connectionID)
		}
		return err
	}
	if conn.ReceiverID != userID {
		return ErrNotReceiver
	}

	return s.db.Model(&conn).Update("status", status).Error
}

// GetConnections returns the accepted counterpart users for the given user.
func (s *Service) GetConnections(user *models.User) ([]models.User, error) {
	var conns []models.Connection
	err := s.db.Where(
		"(requester_id = ? OR receiver_id = ?) AND status = ?",
		user.ID, user.ID, models.ConnectionAccepted,
	).Find(&conns).Error
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]uint, 0, len(conns))
	for _, conn := range conns {
		if conn.RequesterID == user.ID {
			counterpartIDs = append(counterpartIDs, conn.ReceiverID)
		} else {
			counterpartIDs = append(counterpartIDs, conn.RequesterID)
		}
	}
	if len(counterpartIDs) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	err = s.db.Where("id IN ?", counterpartIDs).Find(&users).Error
	return users, err
}

func (s *Service) GetPendingRequests(receiverID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := s.db.Where("receiver_id = ? AND status = ?", receiverID, models.ConnectionPending).
		Preload("Requester").
		Find(&conns).Error
	return conns, err
}
