package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

const DefaultRetention = 24 * time.Hour

// Store persists the scaler state as a JSON file. Writes go through a temp
// file and rename so an interrupted run never leaves a torn state file, and
// every write prunes actions past the retention horizon.
type Store struct {
	path      string
	retention time.Duration
}

type Config struct {
	Path      string
	Retention time.Duration
}

func New(cfg Config) *Store {
	if cfg.Retention == 0 {
		cfg.Retention = DefaultRetention
	}
	return &Store{
		path:      cfg.Path,
		retention: cfg.Retention,
	}
}

func (s *Store) Path() string { return s.path }

// Load reads the persisted state. A missing file is not an error: the first
// ever run starts from an empty history.
func (s *Store) Load() (*models.ScalerState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("No state file at %s, starting empty", s.path)
			return &models.ScalerState{}, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	var st models.ScalerState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}

	return &st, nil
}

// Save prunes the state and writes it atomically.
func (s *Store) Save(st *models.ScalerState, now time.Time) error {
	st.Prune(now, s.retention)

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}

	logger.Debugf("State saved: %d actions retained", len(st.Actions))
	return nil
}
