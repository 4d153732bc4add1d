package api

import (
	"log"
	"net/http"
	"os"

	"github.com/beconnected/beconnected-server/service/admin"
	"github.com/beconnected/beconnected-server/service/connection"
	"github.com/beconnected/beconnected-server/service/job"
	"github.com/beconnected/beconnected-server/service/post"
	"github.com/beconnected/beconnected-server/service/user"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	postHandler := post.NewHandler(s.db)
	postHandler.RegisterRoutes(subrouter)

	connectionHandler := connection.NewHandler(s.db)
	connectionHandler.RegisterRoutes(subrouter)

	jobHandler := job.NewHandler(s.db)
	jobHandler.RegisterRoutes(subrouter)

	adminHandler := admin.NewHandler(s.db)
	adminHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, cors(router)))
}
