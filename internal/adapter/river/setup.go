package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

// Options tunes the River client.
type Options struct {
	MaxWorkers int
	Logger     *logger.Logger
}

// Setup runs River's migrations and creates a client with the notification
// worker registered. The caller must call client.Start() to
// begin processing jobs and client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, inbox domain.NotificationRepository, opts Options) (*Client, error) {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 2
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}

	driver := riversqlite.New(db)
	workers := river.NewWorkers()
	river.AddWorker(workers, &NotificationWorker{inbox: inbox, log: opts.Logger})

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}

// Migrate creates or upgrades River's own tables (river_job, river_leader and
// friends). They live beside the application schema but are versioned apart
// from it.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrator, err := rivermigrate.New(riversqlite.New(db), nil)
	if err != nil {
		return fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("running river migrations: %w", err)
	}
	return nil
}
