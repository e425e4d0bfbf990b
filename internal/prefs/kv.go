package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MemoryKV is an in-memory KV backend, used in tests and when no preference
// file is configured.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV creates an empty in-memory backend.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// Get returns the stored value for key.
func (kv *MemoryKV) Get(key string) (string, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok
}

// Set stores value under key.
func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

// FileKV is a JSON-file-backed KV backend. The whole map is read on Get and
// rewritten on Set; fine for a handful of preference keys.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV creates a file-backed backend at path. The file is created on
// first Set.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Get returns the stored value for key. A missing or unreadable file reads
// as empty.
func (kv *FileKV) Get(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	m, err := kv.read()
	if err != nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// Set stores value under key, rewriting the file.
func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	m, err := kv.read()
	if err != nil {
		// Corrupted file: start over rather than fail the write.
		m = make(map[string]string)
	}
	m[key] = value

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preference file: %w", err)
	}
	if err := os.WriteFile(kv.path, data, 0o600); err != nil {
		return fmt.Errorf("write preference file: %w", err)
	}
	return nil
}

func (kv *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
