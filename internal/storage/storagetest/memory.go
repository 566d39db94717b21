// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"AssetVault/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var ErrInjected = errors.New("injected store failure")

type Object struct {
	Data        []byte
	ContentType string
	Public      bool
}

// Memory keeps objects in a map. PutErr and RemoveErr force failures.
type Memory struct {
	mu        sync.Mutex
	objects   map[string]Object
	locators  storage.Locators
	PutErr    error
	RemoveErr error
	Puts      int
	Removes   int
}

func NewMemory() *Memory {
	return &Memory{
		objects:  make(map[string]Object),
		locators: storage.Locators{Base: "http://memory.local", Bucket: "test-bucket"},
	}
}

func (m *Memory) Bucket() string {
	return m.locators.Bucket
}

func (m *Memory) PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts storage.PutOptions) (string, error) {
	m.mu.Lock()
	m.Puts++
	putErr := m.PutErr
	m.mu.Unlock()
	if putErr != nil {
		return "", putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: declared %d, read %d", size, len(data))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := storage.ObjectName(key, opts.Public)
	m.objects[name] = Object{Data: data, ContentType: opts.ContentType, Public: opts.Public}
	return m.locators.Locator(name), nil
}

func (m *Memory) RemoveObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removes++
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) PresignedGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("%s?expires=%d", m.locators.Locator(key), int64(expiry.Seconds())), nil
}

func (m *Memory) KeyFromLocator(locator string) (string, error) {
	return m.locators.Key(locator)
}

// Get returns a stored object by its full name.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
