package connection

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
	router.HandleFunc("/connections", utils.AuthMiddleware(h.GetConnections)).Methods("GET")
	router.HandleFunc("/connections/requests", utils.AuthMiddleware(h.GetPendingRequests)).Methods("GET")
	router.HandleFunc("/connections/{userId}", utils.AuthMiddleware(h.RequestConnection)).Methods("POST")
	router.HandleFunc("/connections/{id}/accept", utils.AuthMiddleware(h.AcceptConnection)).Methods("POST")
	router.HandleFunc("/connections/{id}/decline", utils.AuthMiddleware(h.DeclineConnection)).Methods("POST")
}

func (h *Handler) RequestConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	receiverID, err := strconv.ParseUint(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	conn, err := h.service.RequestConnection(userID, uint(receiverID))
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfConnection):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrAlreadyConnected):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusNotFound)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conn)
}

func (h *Handler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.AcceptConnection, "Connection accepted")
}

func (h *Handler) DeclineConnection(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.DeclineConnection, "Connection declined")
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, action func(uint, uint) error, message string) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	connectionID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid connection ID", http.StatusBadRequest)
		return
	}

	if err := action(uint(connectionID), userID); err != nil {
		switch {
		case errors.Is(err, ErrConnectionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNotReceiver):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (h *Handler) GetConnections(w http.ResponseWriter, r *http.Request) {
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

	users, err := h.service.GetConnections(&user)
	if err != nil {
		http.Error(w, "Error retrieving connections", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *Handler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.service.GetPendingRequests(userID)
	if err != nil {
		http.Error(w, "Error retrieving requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}
