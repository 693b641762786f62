package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/neural"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir            string
	generationFile *os.File
	speciesFile    *os.File

	// Track if headers have been written
	generationHeaderWritten bool
	speciesHeaderWritten    bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	om.generationFile = f

	f, err = os.Create(filepath.Join(dir, "species.csv"))
	if err != nil {
		om.generationFile.Close()
		return nil, fmt.Errorf("creating species.csv: %w", err)
	}
	om.speciesFile = f

	return om, nil
}

// WriteConfig saves the game configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a generation stats record to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}

	records := []GenerationStats{stats}

	if !om.generationHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.generationFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		om.generationHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.generationFile); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WriteSpecies appends one row per species to species.csv.
func (om *OutputManager) WriteSpecies(records []SpeciesRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.speciesHeaderWritten {
		if err := gocsv.Marshal(records, om.speciesFile); err != nil {
			return fmt.Errorf("writing species: %w", err)
		}
		om.speciesHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.speciesFile); err != nil {
		return fmt.Errorf("writing species: %w", err)
	}
	return nil
}

// ChampionRecord is the JSON form of the best genome of a run.
type ChampionRecord struct {
	GenomeID   int                  `json:"genome_id"`
	Generation int                  `json:"generation"`
	SpeciesID  int                  `json:"species"`
	Fitness    float64              `json:"fitness"`
	Genome     neural.GenomeSummary `json:"genome"`
}

// WriteChampion saves the best individual as champion.json.
func (om *OutputManager) WriteChampion(generation int, best *neural.Individual) error {
	if om == nil || best == nil || best.Genome == nil {
		return nil
	}

	rec := ChampionRecord{
		GenomeID:   best.ID,
		Generation: generation,
		SpeciesID:  best.SpeciesID,
		Fitness:    best.Fitness,
		Genome:     neural.Summarize(best.Genome),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling champion: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "champion.json"), data, 0644); err != nil {
		return fmt.Errorf("writing champion.json: %w", err)
	}
	return nil
}

// WriteHallOfFame saves the hall of fame as JSON.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}

	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0644); err != nil {
		return fmt.Errorf("writing hall_of_fame.json: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.generationFile, om.speciesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
