package credman

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptimer/ptimer/pkg/credman/keyring"
	"github.com/ptimer/ptimer/pkg/logger"
)

type memStore struct {
	token  string
	setErr error
	n      int
}

func (m *memStore) GetToken() (string, error) {
	if m.token == "" {
		return "", errors.New("not found")
	}
	return m.token, nil
}

func (m *memStore) SetToken() (string, error) {
	if m.setErr != nil {
		return "", m.setErr
	}
	m.n++
	m.token = string(rune('a'+m.n)) + "-token"
	return m.token, nil
}

func (m *memStore) DeleteToken() error {
	m.token = ""
	return nil
}

func TestEnsurePrefersKeyring(t *testing.T) {
	primary, fallback := &memStore{}, &memStore{}
	m := NewTokenManagerWithStores(primary, fallback, nil)

	token, err := m.Ensure()
	require.NoError(t, err)
	assert.Equal(t, primary.token, token)
	assert.Empty(t, fallback.token)

	again, err := m.Ensure()
	require.NoError(t, err)
	assert.Equal(t, token, again)
	assert.Equal(t, 1, primary.n)
}

func TestEnsureFallsBackToFile(t *testing.T) {
	log := logger.NewMockLogger()
	primary := &memStore{setErr: errors.New("dbus unavailable")}
	fallback := keyring.NewFileTokenStore(t.TempDir())
	m := NewTokenManagerWithStores(primary, fallback, log)

	token, err := m.Ensure()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.True(t, log.HasWarning("keyring unavailable"))

	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestTokenMissing(t *testing.T) {
	m := NewTokenManagerWithStores(nil, &memStore{}, nil)
	_, err := m.Token()
	assert.Error(t, err)
}

func TestRotate(t *testing.T) {
	primary := &memStore{}
	m := NewTokenManagerWithStores(primary, &memStore{}, nil)
	first, err := m.Ensure()
	require.NoError(t, err)
	second, err := m.Rotate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
