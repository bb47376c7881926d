package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	Close()

	Queries() *Queries
}

type service struct {
	Dbpool *pgxpool.Pool
	q      *Queries
}

// Queries implements Service.
func (s *service) Queries() *Queries {
	return s.q
}

var (
	database   = os.Getenv("DB_DATABASE")
	password   = os.Getenv("DB_PASSWORD")
	username   = os.Getenv("DB_USERNAME")
	port       = os.Getenv("DB_PORT")
	host       = os.Getenv("DB_HOST")
	schema     = os.Getenv("DB_SCHEMA")
	dbInstance *service

	Dbpool *pgxpool.Pool
)

func NewService() Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s", username, password, host, port, database, schema)

	var err error
	Dbpool, err = pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to create connection pool")
	}

	q := New(Dbpool)

	dbInstance = &service{
		Dbpool: Dbpool,
		q:      q,
	}
	return dbInstance
}

// Health pings the database and reports connection pool pressure.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	report := map[string]string{"status": "up"}

	if err := s.Dbpool.Ping(ctx); err != nil {
		report["status"] = "down"
		report["error"] = err.Error()
		log.Error().Err(err).Msg("Database ping failed")
		return report
	}

	st := s.Dbpool.Stat()
	report["pool_max"] = strconv.Itoa(int(st.MaxConns()))
	report["pool_total"] = strconv.Itoa(int(st.TotalConns()))
	report["pool_idle"] = strconv.Itoa(int(st.IdleConns()))
	report["pool_in_use"] = strconv.Itoa(int(st.AcquiredConns()))
	report["acquires"] = strconv.FormatInt(st.AcquireCount(), 10)
	report["empty_acquires"] = strconv.FormatInt(st.EmptyAcquireCount(), 10)
	if st.AcquireCount() > 0 {
		report["avg_acquire_ms"] = strconv.FormatInt(st.AcquireDuration().Milliseconds()/st.AcquireCount(), 10)
	}

	if st.MaxConns() > 0 {
		saturation := int64(st.AcquiredConns()) * 100 / int64(st.MaxConns())
		report["pool_saturation"] = strconv.FormatInt(saturation, 10) + "%"
		if saturation >= 80 {
			report["message"] = "Connection pool under heavy load"
		}
	}
	if st.EmptyAcquireCount() > 0 {
		report["message"] = "Callers have waited on an empty connection pool; consider raising pool_max"
	}

	return report
}

// Close closes the database connection.
func (s *service) Close() {
	log.Info().Str("database", database).Msg("Disconnected from database")
	s.Dbpool.Close()
}
