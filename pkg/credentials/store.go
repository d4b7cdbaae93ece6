// Package credentials holds the transcription service bearer token.
package credentials

import (
	"errors"
	"strings"
	"sync"

	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

var ErrEmptyCredential = errors.New("credential is empty")

// Store reads and writes the bearer token.
type Store interface {
	Get() (string, bool)
	Set(token string) error
}

// Cache is the process-wide in-memory credential. The first Get falls through to
// the backend, if any; Set writes through. Tokens never expire.
type Cache struct {
	backend Store

	mu     sync.RWMutex
	token  string
	loaded bool
}

func NewCache(backend Store) *Cache {
	return &Cache{backend: backend}
}

func (c *Cache) Get() (string, bool) {
	c.mu.RLock()
	if c.loaded {
		token := c.token
		c.mu.RUnlock()
		return token, token != ""
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		if c.backend != nil {
			if token, ok := c.backend.Get(); ok {
				c.token = token
			}
		}
		c.loaded = true
	}
	return c.token, c.token != ""
}

func (c *Cache) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyCredential
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		if err := c.backend.Set(token); err != nil {
			return utils.WrapIfNotNil(err)
		}
	}
	c.token = token
	c.loaded = true
	return nil
}

// Static is a fixed token, typically taken from configuration.
type Static string

func (s Static) Get() (string, bool) {
	token := strings.TrimSpace(string(s))
	return token, token != ""
}

func (s Static) Set(string) error {
	return errors.New("static credential is read-only")
}
