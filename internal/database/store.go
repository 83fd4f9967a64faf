package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// ErrStoreClosed is returned when the store is used before Open or after Close.
var ErrStoreClosed = errors.New("database store is not open")

// Store owns the process-wide database handle. It is opened once on start-up
// and closed on shutdown.
type Store struct {
	mu sync.RWMutex
	db *gorm.DB
}

// NewStore returns an unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open connects using the given dialector and verifies the connection.
func (s *Store) Open(dialector gorm.Dialector, cfg *gorm.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if cfg == nil {
		cfg = &gorm.Config{TranslateError: true}
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return err
	}

	s.db = db
	return nil
}

// DB returns the open handle or ErrStoreClosed.
func (s *Store) DB() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.db, nil
}

// Migrate creates or updates the tables used by the service.
func (s *Store) Migrate() error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	return db.AutoMigrate(models.All()...)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
