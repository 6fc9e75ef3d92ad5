package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	Addr         string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

func New(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Addr)

	if err != nil {
		return nil, err
	}

	// Passing a value less than or equal to 0 means there is no limit.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	maxIdleDuration, err := time.ParseDuration(cfg.MaxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("invalid db max idle time %q: %w", cfg.MaxIdleTime, err)
	}
	db.SetConnMaxIdleTime(maxIdleDuration)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)

	defer cancel()

	err = db.PingContext(ctx)

	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// GenerateULID returns a lexically sortable id, used for every primary key.
func GenerateULID() string {
	return ulid.Make().String()
}
