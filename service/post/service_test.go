package post

import (
	"errors"
	"fmt"
	"testing"
	"time"

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

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}); err != nil {
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

func setCreatedAt(t *testing.T, db *gorm.DB, post *models.Post, at time.Time) {
	t.Helper()
	if err := db.Model(post).UpdateColumn("created_at", at).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
}

func TestLikePostAndConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")

	post, err := svc.CreatePost("hello", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.LikePost(post.ID, liker.ID); err != nil {
		t.Fatalf("like post: %v", err)
	}

	likes, err := svc.GetLikesByPostID(post.ID)
	if err != nil {
		t.Fatalf("get likes: %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != liker.ID {
		t.Fatalf("expected exactly one like by %d, got %+v", liker.ID, likes)
	}

	if err := svc.LikePost(post.ID, liker.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	var stored models.Post
	if err := db.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.LikesCount != 1 {
		t.Fatalf("expected likes_count 1, got %d", stored.LikesCount)
	}
}

func TestLikePostMissingPost(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	liker := seedUser(t, db, "liker")

	if err := svc.LikePost(999, liker.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

// A storage failure on the existence check must surface to the caller and
// roll the transaction back rather than falling through to the insert.
func TestLikePostStorageError(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")

	post, err := svc.CreatePost("hello", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := db.Migrator().DropTable(&models.Like{}); err != nil {
		t.Fatalf("drop likes table: %v", err)
	}

	err = svc.LikePost(post.ID, liker.ID)
	if err == nil || errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected storage error, got %v", err)
	}

	var stored models.Post
	if err := db.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.LikesCount != 0 {
		t.Fatalf("likes_count changed after failed like: %d", stored.LikesCount)
	}
}

func TestRemoveLike(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")

	post, err := svc.CreatePost("hello", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.RemoveLike(post.ID, liker.ID); !errors.Is(err, ErrLikeNotFound) {
		t.Fatalf("expected ErrLikeNotFound, got %v", err)
	}

	if err := svc.LikePost(post.ID, liker.ID); err != nil {
		t.Fatalf("like post: %v", err)
	}
	if err := svc.RemoveLike(post.ID, liker.ID); err != nil {
		t.Fatalf("remove like: %v", err)
	}

	// A fresh like after an unlike must work again.
	if err := svc.LikePost(post.ID, liker.ID); err != nil {
		t.Fatalf("re-like post: %v", err)
	}
}

func TestRemoveComment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	commenter := seedUser(t, db, "commenter")
	other := seedUser(t, db, "other")

	post, err := svc.CreatePost("hello", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	otherPost, err := svc.CreatePost("other", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create other post: %v", err)
	}

	comment, err := svc.AddComment(post.ID, "nice", commenter.ID)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if err := svc.RemoveComment(post.ID, comment.ID, other.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for wrong user, got %v", err)
	}
	if err := svc.RemoveComment(otherPost.ID, comment.ID, commenter.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for wrong post, got %v", err)
	}

	if err := svc.RemoveComment(post.ID, comment.ID, commenter.ID); err != nil {
		t.Fatalf("remove comment: %v", err)
	}
	if err := svc.RemoveComment(post.ID, comment.ID, commenter.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound after delete, got %v", err)
	}
}

func TestAddCommentMissingPost(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	commenter := seedUser(t, db, "commenter")

	if _, err := svc.AddComment(42, "hello", commenter.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestGetFeedForUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	feed, err := svc.GetFeedForUser(nil)
	if err != nil {
		t.Fatalf("empty feed: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected empty feed, got %d posts", len(feed))
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p1, _ := svc.CreatePost("first", nil, "", alice.ID)
	p2, _ := svc.CreatePost("second", nil, "", bob.ID)
	p3, _ := svc.CreatePost("third", nil, "", alice.ID)
	hidden, _ := svc.CreatePost("hidden", nil, "", carol.ID)
	setCreatedAt(t, db, p1, base)
	setCreatedAt(t, db, p2, base.Add(time.Hour))
	// p2 and p3 share a timestamp; the higher id must win
	setCreatedAt(t, db, p3, base.Add(time.Hour))
	setCreatedAt(t, db, hidden, base.Add(2*time.Hour))

	feed, err = svc.GetFeedForUser([]uint{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(feed))
	}
	wantOrder := []uint{p3.ID, p2.ID, p1.ID}
	for i, want := range wantOrder {
		if feed[i].ID != want {
			t.Fatalf("position %d: expected post %d, got %d", i, want, feed[i].ID)
		}
	}
	for _, p := range feed {
		if p.UserID == carol.ID {
			t.Fatalf("feed leaked post from excluded author %d", carol.ID)
		}
	}
}

func TestGetPostsByAuthorOrdering(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p, err := svc.CreatePost(fmt.Sprintf("post %d", i), nil, "", author.ID)
		if err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
		setCreatedAt(t, db, p, base.Add(time.Duration(i)*time.Minute))
	}

	posts, err := svc.GetPostsByAuthor(author.ID)
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
			t.Fatalf("posts not in descending creation order")
		}
	}
}

func TestLikedAndCommentedPostsDeduplicated(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")

	p1, _ := svc.CreatePost("one", nil, "", author.ID)
	p2, _ := svc.CreatePost("two", nil, "", author.ID)

	if err := svc.LikePost(p1.ID, reader.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.LikePost(p2.ID, reader.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	liked, err := svc.GetPostsLikedByUser(reader.ID)
	if err != nil {
		t.Fatalf("liked posts: %v", err)
	}
	if len(liked) != 2 {
		t.Fatalf("expected 2 liked posts, got %d", len(liked))
	}

	// Two comments on the same post must yield one entry.
	if _, err := svc.AddComment(p1.ID, "first", reader.ID); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := svc.AddComment(p1.ID, "second", reader.ID); err != nil {
		t.Fatalf("comment: %v", err)
	}

	commented, err := svc.GetPostsCommentedByUser(reader.ID)
	if err != nil {
		t.Fatalf("commented posts: %v", err)
	}
	if len(commented) != 1 || commented[0].ID != p1.ID {
		t.Fatalf("expected single deduplicated post %d, got %+v", p1.ID, commented)
	}
}

func TestDeletePost(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	post, err := svc.CreatePost("bye", nil, "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := svc.AddComment(post.ID, "so long", other.ID); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := svc.LikePost(post.ID, other.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	if err := svc.DeletePost(post.ID, other.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.DeletePost(post.ID, author.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var likeCount, commentCount int64
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
	if likeCount != 0 || commentCount != 0 {
		t.Fatalf("expected likes and comments removed, got %d likes %d comments", likeCount, commentCount)
	}
}
