package backend

import (
	"fmt"
	"path/filepath"

	"pocketbook/internal/config"
	"pocketbook/internal/storage"
)

const (
	DefaultSQLiteFile      = "pocketbook.db"
	DefaultCredentialsFile = "credentials.json"
)

// FromAppConfig converts the application config to backend config. The
// data directory is resolved and created; empty paths default to files
// inside it.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.StorageBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.StorageBackend)
	}

	dir, err := storage.ResolveDataDir(appConfig.DataDir)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Type:            backendType,
		DataDir:         dir,
		DataFile:        orDefault(appConfig.DataFile, filepath.Join(dir, storage.DefaultFileName)),
		SQLiteDBPath:    orDefault(appConfig.SQLiteDBPath, filepath.Join(dir, DefaultSQLiteFile)),
		Credentials:     CredentialType(appConfig.CredentialBackend),
		CredentialsFile: orDefault(appConfig.CredentialsFile, filepath.Join(dir, DefaultCredentialsFile)),
		KeyringService:  appConfig.KeyringService,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FileBackend:
		if c.DataFile == "" {
			return fmt.Errorf("data file path is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	}

	switch c.Credentials {
	case KeyringCredentials:
		if c.KeyringService == "" {
			return fmt.Errorf("keyring service is required for keyring credentials")
		}
	case FileCredentials:
		if c.CredentialsFile == "" {
			return fmt.Errorf("credentials file path is required for file credentials")
		}
	case MemoryCredentials:
	default:
		return fmt.Errorf("invalid credential backend: %s", c.Credentials)
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{FileBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
