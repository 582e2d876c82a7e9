package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	statsFile *os.File

	statsHeaderWritten bool
}

// NewOutputManager creates the output directory and opens stats.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	statsPath := filepath.Join(dir, "stats.csv")
	f, err := os.Create(statsPath)
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}

	return &OutputManager{dir: dir, statsFile: f}, nil
}

// AppendStats writes rows to stats.csv, emitting the header on first call.
func (om *OutputManager) AppendStats(rows []Stats) error {
	if om == nil || om.statsFile == nil || len(rows) == 0 {
		return nil
	}
	var err error
	if !om.statsHeaderWritten {
		err = gocsv.Marshal(&rows, om.statsFile)
		om.statsHeaderWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(&rows, om.statsFile)
	}
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: failed to append stats rows")
	}
	return err
}

// Dir returns the output directory.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the underlying files.
func (om *OutputManager) Close() {
	if om == nil {
		return
	}
	if om.statsFile != nil {
		om.statsFile.Close()
		om.statsFile = nil
	}
}
