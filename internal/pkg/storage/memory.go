package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in process. Presigned URLs use the memory:// scheme
// and are only meaningful to Object.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, obj Object) (ObjectInfo, error) {
	data := bytes.Clone(obj.Body)

	m.mu.Lock()
	m.objects[obj.Bucket+"/"+obj.Key] = data
	m.mu.Unlock()

	sum := sha256.Sum256(data)
	return ObjectInfo{Bucket: obj.Bucket, Key: obj.Key, Size: obj.size(), ETag: hex.EncodeToString(sum[:8])}, nil
}

func (m *Memory) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if _, ok := m.Object(bucket, key); !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}

	u := url.URL{Scheme: "memory", Host: bucket, Path: "/" + key}
	u.RawQuery = url.Values{"expires": {time.Now().Add(expiry).UTC().Format(time.RFC3339)}}.Encode()
	return u.String(), nil
}

// Object returns a copy of the stored content.
func (m *Memory) Object(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[bucket+"/"+key]
	return bytes.Clone(data), ok
}

func (m *Memory) Close() error { return nil }
