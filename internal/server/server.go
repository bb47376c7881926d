package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/admin"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/aiservice"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/ratelimit"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/user"
)

type Server struct {
	port int

	cfg     config.Config
	db      database.Service
	ai      *aiservice.Service
	limiter *ratelimit.Limiter
}

// NewServer assembles the HTTP server: the AI suggestion service, the
// per-caller rate limiter in front of it, and the route table.
func NewServer(db database.Service, cfg config.Config) *http.Server {
	ai := aiservice.New(db.Queries(), cfg)
	limiter := ratelimit.New(ratelimit.Config{
		Window:             cfg.RateLimit.Window,
		MaxRequests:        cfg.RateLimit.MaxRequests,
		CleanupProbability: cfg.RateLimit.CleanupProbability,
	})

	s := &Server{
		port:    cfg.Port,
		cfg:     cfg,
		db:      db,
		ai:      ai,
		limiter: limiter,
	}

	user.InitUser(database.Dbpool, ai)
	admin.InitAdmin(db, ai, limiter)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
