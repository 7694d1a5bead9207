package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"
)

// tokenBytes is the length of a generated RPC token before hex encoding.
const tokenBytes = 32

type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "ptimer",
		KeyField: "rpc-token",
	}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func checkToken(token string) error {
	b, err := hex.DecodeString(token)
	if err != nil {
		return fmt.Errorf("invalid token format: %w", err)
	}
	if len(b) != tokenBytes {
		return fmt.Errorf("invalid token length: expected %d, got %d", tokenBytes, len(b))
	}
	return nil
}

func (k *Keyring) SetToken() (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := keyringSet(k.AppName, k.KeyField, token); err != nil {
		return "", err
	}
	return token, nil
}

func (k *Keyring) GetToken() (string, error) {
	token, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return "", err
	}
	if err := checkToken(token); err != nil {
		return "", err
	}
	return token, nil
}

func (k *Keyring) DeleteToken() error {
	return keyringDelete(k.AppName, k.KeyField)
}
