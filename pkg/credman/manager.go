// Package credman resolves the bearer token shared by the daemon and its
// clients.
package credman

import (
	"fmt"

	"github.com/ptimer/ptimer/pkg/credman/keyring"
	"github.com/ptimer/ptimer/pkg/logger"
)

// TokenStore persists a single RPC token.
type TokenStore interface {
	GetToken() (string, error)
	SetToken() (string, error)
	DeleteToken() error
}

// TokenManager reads the token from the system keyring and falls back to a
// file under the config directory when the keyring is unavailable.
type TokenManager struct {
	primary  TokenStore
	fallback TokenStore
	log      logger.Logger
}

// NewTokenManager returns a manager using the system keyring and a token
// file in configDir.
func NewTokenManager(configDir string, l logger.Logger) *TokenManager {
	return NewTokenManagerWithStores(keyring.NewKeyring(), keyring.NewFileTokenStore(configDir), l)
}

// NewTokenManagerWithStores returns a manager over explicit stores. primary
// may be nil to skip the keyring.
func NewTokenManagerWithStores(primary, fallback TokenStore, l logger.Logger) *TokenManager {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &TokenManager{primary: primary, fallback: fallback, log: l}
}

// Token returns the stored token without creating one.
func (m *TokenManager) Token() (string, error) {
	if m.primary != nil {
		if token, err := m.primary.GetToken(); err == nil {
			return token, nil
		}
	}
	token, err := m.fallback.GetToken()
	if err != nil {
		return "", fmt.Errorf("credman: no rpc token found: %w", err)
	}
	return token, nil
}

// Ensure returns the stored token, generating one on first use. The keyring
// is tried first; a keyring failure falls back to the token file.
func (m *TokenManager) Ensure() (string, error) {
	if token, err := m.Token(); err == nil {
		return token, nil
	}
	if m.primary != nil {
		token, err := m.primary.SetToken()
		if err == nil {
			return token, nil
		}
		m.log.Warning("credman: system keyring unavailable, using token file: %v", err)
	}
	token, err := m.fallback.SetToken()
	if err != nil {
		return "", fmt.Errorf("credman: store rpc token: %w", err)
	}
	return token, nil
}

// Rotate replaces the stored token with a new one.
func (m *TokenManager) Rotate() (string, error) {
	if m.primary != nil {
		_ = m.primary.DeleteToken()
	}
	_ = m.fallback.DeleteToken()
	return m.Ensure()
}
