package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pthm-cable/arcade/neural"

	_ "modernc.org/sqlite"
)

// Archive stores run summaries, per-generation stats and champions in a
// SQLite database. Every process run gets a fresh run id, so one database
// can hold many runs.
type Archive struct {
	runID string

	mu sync.RWMutex
	db *sql.DB
}

// OpenArchive opens (or creates) the database at path and registers a new
// run. Returns nil if path is empty (archive disabled).
func OpenArchive(ctx context.Context, path, game string, seed int64) (*Archive, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating archive tables: %w", err)
	}

	a := &Archive{runID: uuid.NewString(), db: db}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, game, seed, started_at)
		VALUES (?, ?, ?, ?)
	`, a.runID, game, seed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registering run: %w", err)
	}
	return a, nil
}

// RunID returns the id of the current run, or "" for a nil archive.
func (a *Archive) RunID() string {
	if a == nil {
		return ""
	}
	return a.runID
}

// RecordGeneration stores one generation's stats.
func (a *Archive) RecordGeneration(ctx context.Context, s GenerationStats) error {
	if a == nil {
		return nil
	}
	db, err := a.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, score, frames, population, species,
			best_fitness, mean_fitness, best_genome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			score = excluded.score,
			frames = excluded.frames,
			population = excluded.population,
			species = excluded.species,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			best_genome = excluded.best_genome
	`, a.runID, s.Generation, s.Score, s.Frames, s.Population, s.Species,
		s.BestFitness, s.MeanFitness, s.BestGenome)
	return err
}

// SaveChampion replaces the run's champion with ind.
func (a *Archive) SaveChampion(ctx context.Context, generation int, ind *neural.Individual) error {
	if a == nil || ind == nil || ind.Genome == nil {
		return nil
	}
	db, err := a.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(neural.Summarize(ind.Genome))
	if err != nil {
		return fmt.Errorf("encode champion %d: %w", ind.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, genome_id, generation, species, fitness, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			genome_id = excluded.genome_id,
			generation = excluded.generation,
			species = excluded.species,
			fitness = excluded.fitness,
			payload = excluded.payload
	`, a.runID, ind.ID, generation, ind.SpeciesID, ind.Fitness, payload)
	return err
}

// Champion returns the stored champion of the current run.
func (a *Archive) Champion(ctx context.Context) (ChampionRecord, bool, error) {
	if a == nil {
		return ChampionRecord{}, false, nil
	}
	db, err := a.getDB()
	if err != nil {
		return ChampionRecord{}, false, err
	}

	var (
		rec     ChampionRecord
		payload []byte
	)
	err = db.QueryRowContext(ctx, `
		SELECT genome_id, generation, species, fitness, payload
		FROM champions WHERE run_id = ?
	`, a.runID).Scan(&rec.GenomeID, &rec.Generation, &rec.SpeciesID, &rec.Fitness, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ChampionRecord{}, false, nil
		}
		return ChampionRecord{}, false, err
	}
	if err := json.Unmarshal(payload, &rec.Genome); err != nil {
		return ChampionRecord{}, false, fmt.Errorf("decode champion %d: %w", rec.GenomeID, err)
	}
	return rec, true, nil
}

// Generations returns the number of generations recorded for the current run.
func (a *Archive) Generations(ctx context.Context) (int, error) {
	if a == nil {
		return 0, nil
	}
	db, err := a.getDB()
	if err != nil {
		return 0, err
	}

	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generations WHERE run_id = ?`, a.runID).Scan(&n)
	return n, err
}

// Finish marks the run as finished with its final generation count and best fitness.
func (a *Archive) Finish(ctx context.Context, generations int, bestFitness float64) error {
	if a == nil {
		return nil
	}
	db, err := a.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, generations = ?, best_fitness = ?
		WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), generations, bestFitness, a.runID)
	return err
}

// Close closes the database.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *Archive) getDB() (*sql.DB, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.db == nil {
		return nil, errors.New("archive is closed")
	}
	return a.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			generations INTEGER,
			best_fitness REAL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			score INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			population INTEGER NOT NULL,
			species INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			best_genome INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT PRIMARY KEY,
			genome_id INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			species INTEGER NOT NULL,
			fitness REAL NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
