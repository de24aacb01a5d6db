// Package planstore is the thin persistence wrapper around the hosted
// database. When the database is not configured the store degrades to an
// in-memory map, so plan generation keeps working in development and in
// degraded environments.
package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"nutriplan/internal/planner"
)

// ErrNotFound is returned when no stored plan matches the requested id.
var ErrNotFound = errors.New("plan not found")

// StoredPlan is one persisted generation result.
type StoredPlan struct {
	ID        uuid.UUID          `json:"id"`
	Patient   string             `json:"patient"`
	Plan      planner.WeeklyPlan `json:"plan"`
	CreatedAt time.Time          `json:"created_at"`
}

// Service persists and retrieves generated weekly plans.
type Service interface {
	SaveWeeklyPlan(ctx context.Context, req planner.GenerationRequest, plan planner.WeeklyPlan) (uuid.UUID, error)
	GetWeeklyPlan(ctx context.Context, id uuid.UUID) (StoredPlan, error)
	Health(ctx context.Context) map[string]string
	Close()
}

var (
	database = os.Getenv("NUTRIPLAN_DB_DATABASE")
	password = os.Getenv("NUTRIPLAN_DB_PASSWORD")
	username = os.Getenv("NUTRIPLAN_DB_USERNAME")
	port     = os.Getenv("NUTRIPLAN_DB_PORT")
	host     = os.Getenv("NUTRIPLAN_DB_HOST")
)

// NewService connects to Postgres when the env vars are present and falls
// back to the in-memory store otherwise.
func NewService() Service {
	if host == "" || database == "" {
		log.Warn().Msg("Database not configured, using in-memory plan store")
		return newMemoryStore()
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		username, password, host, port, database)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Warn().Err(err).Msg("Unable to create connection pool, using in-memory plan store")
		return newMemoryStore()
	}

	return &pgStore{pool: pool}
}

/* =================================================================================
                                POSTGRES STORE
=================================================================================*/

type pgStore struct {
	pool *pgxpool.Pool
}

func (s *pgStore) SaveWeeklyPlan(ctx context.Context, req planner.GenerationRequest, plan planner.WeeklyPlan) (uuid.UUID, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal plan: %w", err)
	}

	id := uuid.New()
	patient := fmt.Sprintf("%s %s", req.Name, req.Surname)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO weekly_plans (plan_id, patient, plan, created_at) VALUES ($1, $2, $3, $4)`,
		id, patient, planJSON, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert plan: %w", err)
	}
	return id, nil
}

func (s *pgStore) GetWeeklyPlan(ctx context.Context, id uuid.UUID) (StoredPlan, error) {
	var (
		stored   StoredPlan
		planJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT plan_id, patient, plan, created_at FROM weekly_plans WHERE plan_id = $1`,
		id).Scan(&stored.ID, &stored.Patient, &planJSON, &stored.CreatedAt)
	if err != nil {
		return StoredPlan{}, ErrNotFound
	}
	if err := json.Unmarshal(planJSON, &stored.Plan); err != nil {
		return StoredPlan{}, fmt.Errorf("unmarshal stored plan: %w", err)
	}
	return stored, nil
}

func (s *pgStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	stats := s.pool.Stat()
	return map[string]string{
		"status":            "up",
		"total_connections": fmt.Sprint(stats.TotalConns()),
		"idle_connections":  fmt.Sprint(stats.IdleConns()),
	}
}

func (s *pgStore) Close() {
	s.pool.Close()
}

/* =================================================================================
                                IN-MEMORY STORE
=================================================================================*/

type memoryStore struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]StoredPlan
}

func newMemoryStore() *memoryStore {
	return &memoryStore{plans: make(map[uuid.UUID]StoredPlan)}
}

func (s *memoryStore) SaveWeeklyPlan(_ context.Context, req planner.GenerationRequest, plan planner.WeeklyPlan) (uuid.UUID, error) {
	id := uuid.New()
	s.mu.Lock()
	s.plans[id] = StoredPlan{
		ID:        id,
		Patient:   fmt.Sprintf("%s %s", req.Name, req.Surname),
		Plan:      plan,
		CreatedAt: time.Now(),
	}
	s.mu.Unlock()
	return id, nil
}

func (s *memoryStore) GetWeeklyPlan(_ context.Context, id uuid.UUID) (StoredPlan, error) {
	s.mu.RLock()
	stored, ok := s.plans[id]
	s.mu.RUnlock()
	if !ok {
		return StoredPlan{}, ErrNotFound
	}
	return stored, nil
}

func (s *memoryStore) Health(context.Context) map[string]string {
	s.mu.RLock()
	count := len(s.plans)
	s.mu.RUnlock()
	return map[string]string{
		"status": "up",
		"mode":   "in-memory",
		"plans":  fmt.Sprint(count),
	}
}

func (s *memoryStore) Close() {}
