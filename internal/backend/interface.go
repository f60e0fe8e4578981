package backend

import (
	"context"

	"gstinvoicer/internal/services"
	"gstinvoicer/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is everything the server needs from a backend.
type BackendResult struct {
	Store store.Store
	// Publisher is nil when AMQP is disabled or unreachable.
	Publisher services.Publisher
	// Ready reports whether the store can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath   string
	SeedSampleData bool

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
