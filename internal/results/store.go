package results

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qteleport/internal/sim"
	"qteleport/internal/teleport"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one executed build as recorded in the history.
type Run struct {
	ID        string
	Name      string
	CreatedAt time.Time
	// Custom runs executed a program read from QASM; only
	// Options.NumQubits is meaningful for them.
	Custom    bool
	Options   teleport.Options
	Shots     int
	Seed      int64
	QASM      string
	Counts    sim.Counts
}

// Store keeps run history in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the history database at path and applies the
// schema. WAL mode, a busy timeout and a single connection keep the file
// safe for one writer with concurrent readers.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect to database")
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	return &Store{db: db, logger: logger.Named("store")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "execute %q", pragma)
		}
	}
	return nil
}

// SaveRun inserts run. A missing ID is filled with a UUIDv7 and a zero
// CreatedAt with the current time; both are written back to run.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.Must(uuid.NewV7()).String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	layout, err := yaml.Marshal(run.Options.Positions)
	if err != nil {
		return errors.Wrap(err, "encode layout")
	}
	counts, err := EncodeCounts(run.Counts)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at, layout, num_qubits, direction, bell,
			barriers, hadamard_basis, shots, seed, qasm, counts, custom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Name, run.CreatedAt.UnixMilli(), string(layout),
		run.Options.NumQubits, int(run.Options.Direction), int(run.Options.Bell),
		run.Options.Barriers, run.Options.HadamardBasis,
		run.Shots, run.Seed, run.QASM, string(counts), run.Custom,
	)
	if err != nil {
		return errors.Wrap(err, "insert run")
	}

	s.logger.Debug("saved run", zap.String("id", run.ID), zap.String("name", run.Name))
	return nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, layout, num_qubits, direction, bell,
			barriers, hadamard_basis, shots, seed, qasm, counts, custom
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, layout, num_qubits, direction, bell,
			barriers, hadamard_basis, shots, seed, qasm, counts, custom
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                     Run
		createdAt               int64
		layout, counts          string
		direction, bell         int
		barriers, hadamardBasis bool
	)
	err := row.Scan(&run.ID, &run.Name, &createdAt, &layout, &run.Options.NumQubits,
		&direction, &bell, &barriers, &hadamardBasis, &run.Shots, &run.Seed, &run.QASM, &counts, &run.Custom)
	if err != nil {
		return nil, errors.Wrap(err, "scan run")
	}

	if err := yaml.Unmarshal([]byte(layout), &run.Options.Positions); err != nil {
		return nil, errors.Wrap(err, "decode layout")
	}
	run.Counts, err = DecodeCounts([]byte(counts))
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	run.Options.Direction = teleport.Direction(direction)
	run.Options.Bell = teleport.BellState(bell)
	run.Options.Barriers = barriers
	run.Options.HadamardBasis = hadamardBasis
	return &run, nil
}
