package models

import "gorm.io/gorm"

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionDeclined = "declined"
)

// Connection links two users. A single row exists per pair; Status tracks
// whether the receiver has accepted the request.
type Connection struct {
	gorm.Model
	RequesterID uint   `gorm:"column:requester_id;not null;index" json:"requester_id"`
	ReceiverID  uint   `gorm:"column:receiver_id;not null;index" json:"receiver_id"`
	Status      string `gorm:"column:status;size:20;not null;default:pending" json:"status"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Receiver  *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
