// Package user holds the account-facing handlers: health profile, workout
// and meal logs, and the AI suggestion endpoints.
package user

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/aiservice"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

var (
	queries *database.Queries
	aiSvc   *aiservice.Service
)

// InitUser wires the package to the database pool and the AI service.
func InitUser(dbpool *pgxpool.Pool, svc *aiservice.Service) {
	queries = database.New(dbpool)
	aiSvc = svc
}
