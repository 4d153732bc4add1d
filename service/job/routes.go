package job

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/beconnected/beconnected-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	service *Service
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, service: NewService(db)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/jobs", utils.AuthMiddleware(h.CreateJob)).Methods("POST")
	router.HandleFunc("/jobs", h.GetJobs).Methods("GET")
	router.HandleFunc("/jobs/{id}", utils.AuthMiddleware(h.DeleteJob)).Methods("DELETE")
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Skills      []string `json:"skills"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	job, err := h.service.CreateJob(body.Title, body.Description, body.Skills, user.Username)
	if err != nil {
		http.Error(w, "Error creating job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetJobs lists all jobs, or one user's jobs when ?username= is given.
func (h *Handler) GetJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []models.Job
	var err error

	if username := r.URL.Query().Get("username"); username != "" {
		jobs, err = h.service.GetJobsByUser(username)
	} else {
		jobs, err = h.service.GetAllJobs()
	}
	if err != nil {
		http.Error(w, "Error retrieving jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	jobID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteJob(uint(jobID), user.Username); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Job deleted successfully",
	})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return nil, false
	}
	return &user, true
}
