package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps secrets in the operating system keychain under one
// service name.
type KeyringStore struct {
	service string
}

var _ Store = (*KeyringStore)(nil)

func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

// Save replaces any existing value for key.
func (k *KeyringStore) Save(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Read(key string) (string, bool, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring get %s: %w", key, err)
	}
	return v, true, nil
}

func (k *KeyringStore) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}
