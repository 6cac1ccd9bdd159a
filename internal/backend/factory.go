package backend

import (
	"context"
	"fmt"

	"pocketbook/internal/credentials"
	"pocketbook/internal/log"
	"pocketbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

var _ Factory = (*DefaultFactory)(nil)

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	b, err := storage.NewSQLiteBackend(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldLocation, b.Location(), "schema_version", b.SchemaVersion())
	return &BackendResult{Backend: b, Cleanup: b.Close}, nil
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	b := storage.NewFileBackend(config.DataFile)

	f.logger.InfoContext(ctx, "Initialized file backend", log.FieldLocation, b.Location())
	return &BackendResult{Backend: b}, nil
}

// CreateCredentials implements Factory.CreateCredentials
func (f *DefaultFactory) CreateCredentials(config Config) (credentials.Store, error) {
	switch config.Credentials {
	case KeyringCredentials:
		f.logger.Info("Using system keyring for credentials", "service", config.KeyringService)
		return credentials.NewKeyringStore(config.KeyringService), nil
	case FileCredentials:
		f.logger.Info("Using file for credentials", log.FieldLocation, config.CredentialsFile)
		return credentials.NewFileStore(config.CredentialsFile), nil
	case MemoryCredentials:
		f.logger.Warn("Credentials are kept in memory and lost on restart")
		return credentials.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported credential backend: %s", config.Credentials)
	}
}
