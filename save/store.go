package save

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

var ErrNoSnapshot = errors.New("save: no snapshot for slot")

// Store persists save slots.
type Store interface {
	Load(ctx context.Context, slot int) (*Data, error)
	Save(ctx context.Context, slot int, data *Data) error
	Clear(ctx context.Context, slot int) error
	Close() error
}

// MemoryStore keeps encoded snapshots in memory.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[int][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[int][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, slot int) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	blob, ok := m.slots[slot]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSnapshot
	}
	return Decode(blob)
}

func (m *MemoryStore) Save(ctx context.Context, slot int, data *Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := Encode(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[slot] = blob
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, slot int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.slots, slot)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Encode writes data as zstd-compressed YAML.
func Encode(data *Data) ([]byte, error) {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("save: marshal: %w", err)
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("save: compress: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("save: compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("save: compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(blob []byte) (*Data, error) {
	dec, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("save: decompress: %w", err)
	}
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("save: decompress: %w", err)
	}
	data := NewData()
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("save: unmarshal: %w", err)
	}
	if data.World == nil {
		data.World = make(map[string]*LevelData)
	}
	return data, nil
}
