// Package settings persists the runtime used to launch ccusage.
//
// The whole record is stored as one JSON blob under StorageKey. Callers load
// it through a Provider and pass the value along; nothing here caches it.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/janekbaraniewski/ccmeter/internal/config"
)

const StorageKey = "ccusage_runtime_settings"

type RuntimeType string

const (
	RuntimeNPX  RuntimeType = "npx"
	RuntimeBunx RuntimeType = "bunx"
	RuntimePNPM RuntimeType = "pnpm"
	RuntimeDeno RuntimeType = "deno"
)

// RuntimeTypes lists the supported package runners in preference order.
var RuntimeTypes = []RuntimeType{RuntimeNPX, RuntimeBunx, RuntimePNPM, RuntimeDeno}

var ErrUnknownRuntime = errors.New("unknown runtime")

func ParseRuntimeType(s string) (RuntimeType, error) {
	v := RuntimeType(strings.ToLower(strings.TrimSpace(s)))
	for _, rt := range RuntimeTypes {
		if rt == v {
			return rt, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of npx, bunx, pnpm, deno)", ErrUnknownRuntime, s)
}

type RuntimeConfig struct {
	Type RuntimeType `json:"type"`
	Path string      `json:"path,omitempty"`
}

type RuntimeSettings struct {
	SelectedRuntime RuntimeType                   `json:"selectedRuntime,omitempty"`
	CustomPath      string                        `json:"customPath,omitempty"`
	Runtimes        map[RuntimeType]RuntimeConfig `json:"runtimes,omitempty"`
	Initialized     bool                          `json:"initialized"`
}

func DefaultRuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		SelectedRuntime: RuntimeNPX,
		Runtimes:        map[RuntimeType]RuntimeConfig{},
		Initialized:     false,
	}
}

// HasValidConfig reports whether setup has completed with a runtime chosen.
func (s RuntimeSettings) HasValidConfig() bool {
	return s.SelectedRuntime != "" && s.Initialized
}

// RuntimePath returns the executable override for the selected runtime, if any.
func (s RuntimeSettings) RuntimePath() string {
	if p := strings.TrimSpace(s.CustomPath); p != "" {
		return p
	}
	if rc, ok := s.Runtimes[s.SelectedRuntime]; ok {
		return strings.TrimSpace(rc.Path)
	}
	return ""
}

// Provider loads and stores RuntimeSettings.
type Provider interface {
	Load(ctx context.Context) (RuntimeSettings, error)
	Save(ctx context.Context, s RuntimeSettings) error
	Reset(ctx context.Context) error
}

// MarkInitialized flips the initialized flag on the stored settings.
func MarkInitialized(ctx context.Context, p Provider) error {
	s, err := p.Load(ctx)
	if err != nil {
		return err
	}
	s.Initialized = true
	return p.Save(ctx, s)
}

// Path returns the default location of the file-backed store.
func Path() string {
	return filepath.Join(config.ConfigDir(), "runtime.json")
}

// DBPath returns the default location of the SQLite-backed store.
func DBPath() string {
	return filepath.Join(config.ConfigDir(), "ccmeter.db")
}

// Open returns the provider selected by the app config.
func Open(cfg config.Config) (Provider, error) {
	switch cfg.SettingsBackend {
	case config.BackendSQLite:
		return OpenSQLiteStore(DBPath())
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return NewFileStore(Path()), nil
	}
}

// decodeBlob merges a stored blob over the defaults.
func decodeBlob(blob string) (RuntimeSettings, error) {
	s := DefaultRuntimeSettings()
	if strings.TrimSpace(blob) == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return DefaultRuntimeSettings(), fmt.Errorf("parsing runtime settings: %w", err)
	}
	if s.Runtimes == nil {
		s.Runtimes = map[RuntimeType]RuntimeConfig{}
	}
	return s, nil
}

func encodeBlob(s RuntimeSettings) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshaling runtime settings: %w", err)
	}
	return string(data), nil
}

// MemoryStore keeps the blob in memory.
type MemoryStore struct {
	mu   sync.Mutex
	blob string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (RuntimeSettings, error) {
	m.mu.Lock()
	blob := m.blob
	m.mu.Unlock()
	return decodeBlob(blob)
}

func (m *MemoryStore) Save(_ context.Context, s RuntimeSettings) error {
	blob, err := encodeBlob(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob = blob
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	m.blob = ""
	m.mu.Unlock()
	return nil
}
