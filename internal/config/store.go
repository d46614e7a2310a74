package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Load errors. Both are recoverable: the caller substitutes defaults and
// forces configuration-portal mode.
var (
	ErrMissingConfig = errors.New("config: no persisted configuration")
	ErrCorruptConfig = errors.New("config: persisted configuration unreadable")
)

// Store owns the current configuration and its persistence. It is the single
// writer; readers take value copies via Current.
type Store struct {
	path string
	log  zerolog.Logger

	mu  sync.RWMutex
	cur Configuration
}

// Open loads the configuration from path. On ErrMissingConfig or
// ErrCorruptConfig the returned Store holds the defaults and the error tells
// the caller the device is unconfigured; any other error is fatal.
func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{path: path, log: log, cur: Default()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("no config file, using defaults")
			return s, ErrMissingConfig
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config file unparsable, using defaults")
		return s, ErrCorruptConfig
	}
	if err := validate(c); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config file invalid, using defaults")
		return s, ErrCorruptConfig
	}

	s.cur = c
	return s, nil
}

// Current returns a copy of the configuration. The copy is consistent: it
// never reflects a partially applied update.
func (s *Store) Current() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// ValidateAndApply merges u into the current configuration, persists the
// result, and swaps it in. Validation failures return *ValidationError with
// nothing changed. A persistence failure also leaves the in-memory
// configuration untouched, so the caller can surface it and must not reboot.
func (s *Store) ValidateAndApply(u Update) (Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := merge(s.cur, u)
	if err != nil {
		return s.cur, err
	}

	if err := s.persist(next); err != nil {
		return s.cur, fmt.Errorf("persist config: %w", err)
	}

	s.cur = next
	s.log.Info().Str("path", s.path).Msg("configuration saved")
	return next, nil
}

// SetDeviceID records a freshly derived device ID and persists it. Used once
// at first boot; the ID is immutable afterwards.
func (s *Store) SetDeviceID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur.DeviceID != "" {
		return nil
	}
	next := s.cur
	next.DeviceID = id
	if err := s.persist(next); err != nil {
		return fmt.Errorf("persist device id: %w", err)
	}
	s.cur = next
	return nil
}

// persist writes c to a temp file in the same directory and renames it over
// the real path, so a crash mid-write never leaves a truncated config.
func (s *Store) persist(c Configuration) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
