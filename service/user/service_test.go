package user

import (
	"errors"
	"testing"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
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

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Tokens must be signed with the key present at call time, not the one seen
// at package initialization, so keys loaded from .env after startup work.
func TestGenerateJWTUsesCurrentSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "late-loaded-secret")

	tokenString, err := generateJWT(42, 15)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("late-loaded-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify with the current secret: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestResolveByUsernameOrEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	seed := models.User{
		Username:     "gopher",
		Email:        "gopher@example.com",
		PasswordHash: "hash",
		FirstName:    "Go",
		LastName:     "Pher",
		Role:         "user",
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	byUsername, err := svc.ResolveByUsernameOrEmail("gopher")
	if err != nil {
		t.Fatalf("resolve by username: %v", err)
	}
	if byUsername.ID != seed.ID {
		t.Fatalf("resolved wrong user: %d", byUsername.ID)
	}

	byEmail, err := svc.ResolveByUsernameOrEmail("gopher@example.com")
	if err != nil {
		t.Fatalf("resolve by email: %v", err)
	}
	if byEmail.ID != seed.ID {
		t.Fatalf("resolved wrong user: %d", byEmail.ID)
	}

	if _, err := svc.ResolveByUsernameOrEmail("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// A username is tried before an email, so a username that happens to equal
// another user's email must resolve to the username owner.
func TestResolveUsernameTakesPrecedence(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	first := models.User{Username: "a@example.com", Email: "first@example.com", PasswordHash: "h", FirstName: "A", LastName: "A", Role: "user"}
	second := models.User{Username: "second", Email: "a@example.com", PasswordHash: "h", FirstName: "B", LastName: "B", Role: "user"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.ResolveByUsernameOrEmail("a@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected username match to win, got user %d", got.ID)
	}
}
