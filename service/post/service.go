package post

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beconnected/beconnected-server/cmd/models"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrLikeNotFound    = errors.New("like not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("user has already liked this post")
	ErrNotAuthorized   = errors.New("user not authorized to delete this comment")
)

// Service implements post, comment and like operations on top of the store.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePost stores a new post as-is; content validation is the caller's
// responsibility.
func (s *Service) CreatePost(textContent string, mediaContent []byte, mediaType string, authorID uint) (*models.Post, error) {
	post := models.Post{
		UserID:       authorID,
		TextContent:  textContent,
		MediaContent: mediaContent,
		MediaType:    mediaType,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Service) FindByID(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w with id %d", ErrPostNotFound, postID)
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor returns an author's posts, newest first. Ties on creation
// time break on id so the order is deterministic.
func (s *Service) GetPostsByAuthor(authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("user_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// GetPostsLikedByUser follows the user's likes to their posts, removing
// duplicates.
func (s *Service) GetPostsLikedByUser(userID uint) ([]models.Post, error) {
	var likes []models.Like
	if err := s.db.Where("user_id = ?", userID).Preload("Post").Find(&likes).Error; err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(likes))
	seen := make(map[uint]bool, len(likes))
	for _, like := range likes {
		if like.Post == nil || seen[like.Post.ID] {
			continue
		}
		seen[like.Post.ID] = true
		posts = append(posts, *like.Post)
	}
	return posts, nil
}

// GetPostsCommentedByUser follows the user's comments to their posts,
// removing duplicates.
func (s *Service) GetPostsCommentedByUser(userID uint) ([]models.Post, error) {
	var comments []models.Comment
	if err := s.db.Where("user_id = ?", userID).Preload("Post").Find(&comments).Error; err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, comment := range comments {
		if comment.Post == nil || seen[comment.Post.ID] {
			continue
		}
		seen[comment.Post.ID] = true
		posts = append(posts, *comment.Post)
	}
	return posts, nil
}

// GetFeedForUser returns posts from any of the given authors, newest first.
// An empty author set yields an empty feed, not an error.
func (s *Service) GetFeedForUser(authorIDs []uint) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := s.db.Where("user_id IN ?", authorIDs).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

func (s *Service) AddComment(postID uint, commentText string, userID uint) (*models.Comment, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w with id %d", ErrPostNotFound, postID)
		}
		return nil, err
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: commentText,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// LikePost records a like for (postID, userID). The existence check runs
// first for a friendly error; the unique index on likes backs it up when two
// concurrent calls race past the check.
func (s *Service) LikePost(postID, userID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w with id %d", ErrPostNotFound, postID)
		}
		return err
	}

	tx := s.db.Begin()

	var existing models.Like
	err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	if err == nil {
		tx.Rollback()
		return ErrAlreadyLiked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return err
	}

	like := models.Like{PostID: postID, UserID: userID}
	if err := tx.Create(&like).Error; err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return ErrAlreadyLiked
		}
		return err
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *Service) RemoveLike(postID, userID uint) error {
	tx := s.db.Begin()

	result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrLikeNotFound
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// RemoveComment deletes a comment only when the caller authored it and it
// belongs to the given post. Both failures collapse to one error so the
// response does not reveal which condition was violated.
func (s *Service) RemoveComment(postID, commentID, userID uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w with id %d", ErrCommentNotFound, commentID)
		}
		return err
	}

	if comment.UserID != userID || comment.PostID != postID {
		return ErrNotAuthorized
	}

	return s.db.Delete(&comment).Error
}

func (s *Service) GetCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Where("post_id = ?", postID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func (s *Service) GetLikesByPostID(postID uint) ([]models.Like, error) {
	var likes []models.Like
	err := s.db.Where("post_id = ?", postID).Preload("User").Find(&likes).Error
	return likes, err
}

// DeletePost removes a post along with its likes and comments. Only the
// author may delete.
func (s *Service) DeletePost(postID, userID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w with id %d", ErrPostNotFound, postID)
		}
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthorized
	}

	tx := s.db.Begin()

	if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&post).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
