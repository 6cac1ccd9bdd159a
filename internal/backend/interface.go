package backend

import (
	"context"

	"pocketbook/internal/credentials"
	"pocketbook/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend storage.Backend
	Cleanup CleanupFunc
}

// Factory creates the persistence pieces selected by configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateCredentials(config Config) (credentials.Store, error)
}

// Config holds resolved paths for backend creation.
type Config struct {
	Type BackendType

	DataDir      string
	DataFile     string
	SQLiteDBPath string

	Credentials     CredentialType
	CredentialsFile string
	KeyringService  string
}

// BackendType selects where the transaction snapshot lives.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CredentialType selects where the signed-in user identifier is kept.
type CredentialType string

const (
	KeyringCredentials CredentialType = "keyring"
	FileCredentials    CredentialType = "file"
	MemoryCredentials  CredentialType = "memory"
)

func (ct CredentialType) IsValid() bool {
	switch ct {
	case KeyringCredentials, FileCredentials, MemoryCredentials:
		return true
	default:
		return false
	}
}
