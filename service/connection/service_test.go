package connection

import (
	"errors"
	"testing"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Connection{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         "user",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func TestConnectionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conn, err := svc.RequestConnection(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if conn.Status != models.ConnectionPending {
		t.Fatalf("expected pending status, got %q", conn.Status)
	}

	pending, err := svc.GetPendingRequests(bob.ID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].RequesterID != alice.ID {
		t.Fatalf("unexpected pending requests: %+v", pending)
	}

	// Only the receiver may respond.
	if err := svc.AcceptConnection(conn.ID, alice.ID); !errors.Is(err, ErrNotReceiver) {
		t.Fatalf("expected ErrNotReceiver, got %v", err)
	}
	if err := svc.AcceptConnection(conn.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Both sides see each other once accepted.
	aliceConns, err := svc.GetConnections(alice)
	if err != nil {
		t.Fatalf("connections: %v", err)
	}
	if len(aliceConns) != 1 || aliceConns[0].ID != bob.ID {
		t.Fatalf("alice's connections wrong: %+v", aliceConns)
	}
	bobConns, err := svc.GetConnections(bob)
	if err != nil {
		t.Fatalf("connections: %v", err)
	}
	if len(bobConns) != 1 || bobConns[0].ID != alice.ID {
		t.Fatalf("bob's connections wrong: %+v", bobConns)
	}
}

func TestRequestConnectionRejections(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := svc.RequestConnection(alice.ID, alice.ID); !errors.Is(err, ErrSelfConnection) {
		t.Fatalf("expected ErrSelfConnection, got %v", err)
	}
	if _, err := svc.RequestConnection(alice.ID, 999); err == nil {
		t.Fatalf("expected error for unknown receiver")
	}

	if _, err := svc.RequestConnection(alice.ID, bob.ID); err != nil {
		t.Fatalf("request: %v", err)
	}
	// One row per pair, regardless of direction.
	if _, err := svc.RequestConnection(bob.ID, alice.ID); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
}

func TestDeclineConnection(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conn, err := svc.RequestConnection(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.DeclineConnection(conn.ID, bob.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	conns, err := svc.GetConnections(alice)
	if err != nil {
		t.Fatalf("connections: %v", err)
	}
	if len(conns) != 0 {
		t.Fatalf("declined connection leaked into connection list")
	}

	if err := svc.DeclineConnection(4242, bob.ID); !errors.Is(err, ErrConnectionNotFound) {
		t.Fatalf("expected ErrConnectionNotFound, got %v", err)
	}
}
