// Package store persists the retained state across suspends.
// The file stands in for the device's retained memory region: it is read once
// at the top of a boot cycle and written once, immediately before suspend.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// DefaultPath is the retained state file location.
const DefaultPath = "/var/lib/mailbox-sensor/retained.json"

// formatVersion is bumped when the on-disk layout changes.
// An unknown version is treated like a corrupt region: cold start.
// Version 1 kept the awake time in milliseconds and is still read.
const (
	formatVersion   = 2
	formatVersionMs = 1
)

// Store loads and commits the retained state.
type Store interface {
	// Load returns the retained state, or logic.ColdStart() if none exists.
	Load() (logic.RetainedState, error)

	// Commit atomically replaces the retained state.
	Commit(state logic.RetainedState) error
}

// record is the on-disk form of logic.RetainedState.
type record struct {
	Version        int    `json:"version"`
	BootCount      uint64 `json:"boot_count"`
	StuckBootCount uint64 `json:"stuck_boot_count"`
	LastDoorState  string `json:"last_door_state"`
	TimeAwakeUs    int64  `json:"time_awake_us,omitempty"`
	TimeAwakeMs    int64  `json:"time_awake_ms,omitempty"`
}

// Encode returns the on-disk JSON for state.
func Encode(state logic.RetainedState) ([]byte, error) {
	return json.Marshal(record{
		Version:        formatVersion,
		BootCount:      state.BootCount,
		StuckBootCount: state.StuckBootCount,
		LastDoorState:  string(state.LastDoorState),
		TimeAwakeUs:    state.TimeAwake.Round(time.Microsecond).Microseconds(),
	})
}

// Decode parses on-disk JSON. Anything that does not decode to a known
// version with a valid door state is an error.
func Decode(data []byte) (logic.RetainedState, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return logic.RetainedState{}, fmt.Errorf("decode retained state: %w", err)
	}
	var awake time.Duration
	switch r.Version {
	case formatVersion:
		awake = time.Duration(r.TimeAwakeUs) * time.Microsecond
	case formatVersionMs:
		awake = time.Duration(r.TimeAwakeMs) * time.Millisecond
	default:
		return logic.RetainedState{}, fmt.Errorf("unsupported retained state version %d", r.Version)
	}
	door := logic.DoorState(r.LastDoorState)
	if !door.Valid() {
		return logic.RetainedState{}, fmt.Errorf("invalid last door state %q", r.LastDoorState)
	}
	if awake < 0 {
		return logic.RetainedState{}, fmt.Errorf("negative awake time %v", awake)
	}
	return logic.RetainedState{
		BootCount:      r.BootCount,
		StuckBootCount: r.StuckBootCount,
		LastDoorState:  door,
		TimeAwake:      awake,
	}, nil
}

// FileStore keeps the retained state in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The directory is created on
// first commit.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing or corrupt file is a cold start;
// only other I/O failures are returned as errors.
func (s *FileStore) Load() (logic.RetainedState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return logic.ColdStart(), nil
	}
	if err != nil {
		return logic.ColdStart(), fmt.Errorf("read %s: %w", s.path, err)
	}

	state, err := Decode(data)
	if err != nil {
		log.Printf("store: %v, treating as cold start", err)
		return logic.ColdStart(), nil
	}
	return state, nil
}

// Commit writes state to a temp file in the same directory, syncs it, and
// renames it over the state file. A power cut at any point leaves either the
// old or the new content.
func (s *FileStore) Commit(state logic.RetainedState) error {
	data, err := Encode(state)
	if err != nil {
		return fmt.Errorf("encode retained state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".retained-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	committed = true

	// Persist the rename itself.
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open state dir: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync state dir: %w", err)
	}
	return nil
}
