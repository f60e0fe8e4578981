package backend

import (
	"context"
	"errors"
	"fmt"

	"gstinvoicer/internal/amqp"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/storage"
	"gstinvoicer/internal/store"
	"gstinvoicer/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedSampleData {
		n, err := seedIfEmpty(ctx, repo)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("seed sample invoices: %w", err)
		}
		if n > 0 {
			f.logger.Info("Seeded sample invoices", "count", n)
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	var st *memory.Store
	if config.SeedSampleData {
		st = memory.NewWithSamples()
	} else {
		st = memory.New()
	}

	f.logger.Info("Initialized memory backend", "seeded", config.SeedSampleData)

	return &BackendResult{
		Store: st,
		Ready: func(context.Context) error { return nil },
	}
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached leaves the backend without events rather than failing startup.
func (f *DefaultFactory) attachPublisher(config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without invoice events", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)

	result.Publisher = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		errs := []error{client.Close()}
		if storeCleanup != nil {
			errs = append(errs, storeCleanup())
		}
		return errors.Join(errs...)
	}
}

// seedIfEmpty loads the sample invoices into an empty store.
func seedIfEmpty(ctx context.Context, s store.Store) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	samples := memory.SampleInvoices()
	for _, inv := range samples {
		if err := s.Upsert(ctx, inv); err != nil {
			return 0, fmt.Errorf("insert %s: %w", inv.ID, err)
		}
	}
	return len(samples), nil
}
