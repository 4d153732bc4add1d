package post

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/beconnected/beconnected-server/cmd/utils"
	"github.com/beconnected/beconnected-server/service/connection"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db          *gorm.DB
	service     *Service
	connections *connection.Service
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:          db,
		service:     NewService(db),
		connections: connection.NewService(db),
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/media", h.ServeMedia).Methods("GET")

	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.LikePost)).Methods("POST")
	router.HandleFunc("/posts/{id}/unlike", utils.AuthMiddleware(h.UnlikePost)).Methods("POST")
	router.HandleFunc("/posts/{id}/likes", h.GetLikes).Methods("GET")

	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/posts/{id}/comments/{commentId}", utils.AuthMiddleware(h.DeleteComment)).Methods("DELETE")

	router.HandleFunc("/users/{id}/posts", h.GetPostsByAuthor).Methods("GET")
	router.HandleFunc("/feed", utils.AuthMiddleware(h.GetFeed)).Methods("GET")
}

// GetFeed returns posts from the caller and their accepted connections,
// newest first.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	contacts, err := h.connections.GetConnections(&user)
	if err != nil {
		http.Error(w, "Error retrieving connections", http.StatusInternalServerError)
		return
	}

	authorIDs := make([]uint, 0, len(contacts)+1)
	authorIDs = append(authorIDs, userID)
	for _, contact := range contacts {
		authorIDs = append(authorIDs, contact.ID)
	}

	posts, err := h.service.GetFeedForUser(authorIDs)
	if err != nil {
		http.Error(w, "Error retrieving feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// CreatePost accepts multipart form data so a post can carry optional media.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	textContent := r.FormValue("text_content")
	if textContent == "" {
		http.Error(w, "Text content is required", http.StatusBadRequest)
		return
	}

	var mediaContent []byte
	var mediaType string
	if file, header, err := r.FormFile("media"); err == nil {
		defer file.Close()
		mediaContent, err = io.ReadAll(file)
		if err != nil {
			http.Error(w, "Error reading media", http.StatusInternalServerError)
			return
		}
		mediaType = header.Header.Get("Content-Type")
	}

	post, err := h.service.CreatePost(textContent, mediaContent, mediaType, userID)
	if err != nil {
		http.Error(w, "Error creating post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.service.FindByID(postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePost(postID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post deleted successfully",
	})
}

// ServeMedia streams a post's media bytes with its stored content type.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.service.FindByID(postID)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	if len(post.MediaContent) == 0 {
		http.Error(w, "Post has no media", http.StatusNotFound)
		return
	}

	contentType := post.MediaType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(post.MediaContent)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.LikePost(postID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post liked successfully",
	})
}

func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveLike(postID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post unliked successfully",
	})
}

func (h *Handler) GetLikes(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	likes, err := h.service.GetLikesByPostID(postID)
	if err != nil {
		http.Error(w, "Error retrieving likes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(likes)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(postID, body.Content, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comment)
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.service.GetCommentsByPostID(postID)
	if err != nil {
		http.Error(w, "Error retrieving comments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comments)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(w, r, "commentId")
	if !ok {
		return
	}

	if err := h.service.RemoveComment(postID, commentID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Comment deleted successfully",
	})
}

func (h *Handler) GetPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	posts, err := h.service.GetPostsByAuthor(authorID)
	if err != nil {
		http.Error(w, "Error retrieving posts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

func parseID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound), errors.Is(err, ErrLikeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyLiked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
