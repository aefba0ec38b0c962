package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/tahsinm/registrar/internal/projectpath"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	dbPool     *pgxpool.Pool
	pgOnce     sync.Once
	testDbPool *pgxpool.Pool
	pgTestOnce sync.Once
)

func init() {
	err := godotenv.Load(filepath.Join(projectpath.Root, ".env"))
	if err != nil {
		log.Warn("No .env file loaded: ", err)
	}
}

// NewPool hands out the shared connection pool, creating it on first use.
// useTest switches to TEST_DB_CONN so tests never touch the main database.
func NewPool(ctx context.Context, useTest bool) (*pgxpool.Pool, error) {
	if useTest {
		return newPool(ctx, os.Getenv("TEST_DB_CONN"), &testDbPool, &pgTestOnce)
	}
	return newPool(ctx, os.Getenv("DB_CONN"), &dbPool, &pgOnce)
}

func newPool(
	ctx context.Context,
	connString string,
	pool **pgxpool.Pool,
	once *sync.Once,
) (*pgxpool.Pool, error) {
	var poolErr error = nil
	once.Do(func() {
		pgPool, err := pgxpool.New(ctx, connString)
		if err != nil {
			log.Error(fmt.Errorf("Unable to create connection pool: %w", err))
			poolErr = err
		}
		*pool = pgPool
	})
	if poolErr != nil {
		return nil, poolErr
	}

	return *pool, nil
}
