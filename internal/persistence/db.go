// Package persistence provides SQLite-based storage for simulation runs.
// A DB implements report.Sink, so a run can be recorded alongside (or
// instead of) the CSV output and queried afterwards.
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/report"
)

// DB wraps a SQLite connection. Records are tagged with the id of the run
// started by StartRun; several runs can share one database file.
type DB struct {
	conn  *sqlx.DB
	runID string

	// Per-meeting records are buffered and written in one transaction per
	// Flush.
	pending     []report.Interaction
	pendingSim  []report.SimilarityRecord
	pendingGone []report.Departure
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		simtag INTEGER NOT NULL,
		trial_num INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		params_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS people (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		num_friends INTEGER NOT NULL,
		num_groups INTEGER NOT NULL,
		race TEXT NOT NULL,
		gender TEXT NOT NULL,
		alienation REAL NOT NULL,
		year_in_school INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS friendships (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		a INTEGER NOT NULL,
		b INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		a INTEGER NOT NULL,
		b INTEGER NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS similarities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		race_pair TEXT NOT NULL,
		similarity REAL NOT NULL,
		friends INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departures (
		run_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		year INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		num_friends INTEGER NOT NULL,
		num_groups INTEGER NOT NULL,
		race TEXT NOT NULL,
		gender TEXT NOT NULL,
		alienation REAL NOT NULL,
		year_in_school INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS changes (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		extroversion REAL NOT NULL,
		num_friends INTEGER NOT NULL,
		num_groups INTEGER NOT NULL,
		dep_change REAL NOT NULL,
		indep_change REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_people_run_year ON people(run_id, year);
	CREATE INDEX IF NOT EXISTS idx_friendships_run_year ON friendships(run_id, year);
	CREATE INDEX IF NOT EXISTS idx_interactions_run_kind ON interactions(run_id, kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run with its resolved parameters and returns
// the run id that tags every record written afterwards.
func (db *DB) StartRun(p *config.Params) (string, error) {
	if db.runID != "" {
		if err := db.Flush(); err != nil {
			return "", fmt.Errorf("flush run %s: %w", db.runID, err)
		}
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	id := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO runs (run_id, simtag, trial_num, seed, params_yaml) VALUES (?, ?, ?, ?, ?)",
		id, p.SimTag, p.TrialNum, p.Seed, string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	db.runID = id
	db.pending = db.pending[:0]
	db.pendingSim = db.pendingSim[:0]
	db.pendingGone = db.pendingGone[:0]
	slog.Info("run registered", "run_id", id, "simtag", p.SimTag)
	return id, nil
}

// RunID returns the current run id, or "" before StartRun.
func (db *DB) RunID() string {
	return db.runID
}

// RunIDs returns every recorded run id, oldest first.
func (db *DB) RunIDs() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids, "SELECT run_id FROM runs ORDER BY rowid")
	return ids, err
}

// RunParams loads the parameters a run was started with.
func (db *DB) RunParams(runID string) (*config.Params, error) {
	var data string
	if err := db.conn.Get(&data, "SELECT params_yaml FROM runs WHERE run_id = ?", runID); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	p := config.Default()
	if err := yaml.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("parse run %s params: %w", runID, err)
	}
	return p, nil
}

func (db *DB) requireRun() error {
	if db.runID == "" {
		return fmt.Errorf("persistence: no run started")
	}
	return nil
}

// Interaction buffers one encounter until the next Flush.
func (db *DB) Interaction(r report.Interaction) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	db.pending = append(db.pending, r)
	return nil
}

// Similarity buffers one meeting's similarity until the next Flush.
func (db *DB) Similarity(r report.SimilarityRecord) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	db.pendingSim = append(db.pendingSim, r)
	return nil
}

// People writes one year's population snapshot.
func (db *DB) People(rs []report.PersonSnapshot) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO people
		(run_id, year, person_id, num_friends, num_groups, race, gender, alienation, year_in_school)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range rs {
		_, err := stmt.Exec(db.runID, p.Year, p.ID, p.NumFriends, p.NumGroups,
			p.Race, p.Gender, p.Alienation, p.YearInSchool)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Friendships writes one year's edge list.
func (db *DB) Friendships(rs []report.FriendshipSnapshot) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO friendships (run_id, year, a, b) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range rs {
		if _, err := stmt.Exec(db.runID, f.Year, f.A, f.B); err != nil {
			return fmt.Errorf("insert friendship %d-%d: %w", f.A, f.B, err)
		}
	}

	return tx.Commit()
}

func (db *DB) Changes(rs []report.ChangeSnapshot) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range rs {
		_, err := tx.Exec(`INSERT INTO changes
			(run_id, year, person_id, extroversion, num_friends, num_groups, dep_change, indep_change)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			db.runID, c.Year, c.ID, c.Extroversion, c.NumFriends, c.NumGroups, c.DepChange, c.IndepChange,
		)
		if err != nil {
			return fmt.Errorf("insert change %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Departure buffers one graduation or dropout until the next Flush.
func (db *DB) Departure(r report.Departure) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	db.pendingGone = append(db.pendingGone, r)
	return nil
}

// Flush writes buffered encounters, similarities and departures in one
// transaction.
func (db *DB) Flush() error {
	if len(db.pending) == 0 && len(db.pendingSim) == 0 && len(db.pendingGone) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.flushInteractions(tx); err != nil {
		return err
	}
	if err := db.flushSimilarities(tx); err != nil {
		return err
	}
	if err := db.flushDepartures(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Debug("records flushed", "run_id", db.runID,
		"interactions", len(db.pending), "similarities", len(db.pendingSim), "departures", len(db.pendingGone))
	db.pending = db.pending[:0]
	db.pendingSim = db.pendingSim[:0]
	db.pendingGone = db.pendingGone[:0]
	return nil
}

func (db *DB) flushInteractions(tx *sqlx.Tx) error {
	if len(db.pending) == 0 {
		return nil
	}
	stmt, err := tx.Preparex("INSERT INTO interactions (run_id, year, a, b, kind) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range db.pending {
		if _, err := stmt.Exec(db.runID, r.Year, r.A, r.B, r.Kind.String()); err != nil {
			return fmt.Errorf("insert interaction: %w", err)
		}
	}
	return nil
}

func (db *DB) flushSimilarities(tx *sqlx.Tx) error {
	if len(db.pendingSim) == 0 {
		return nil
	}
	stmt, err := tx.Preparex(
		"INSERT INTO similarities (run_id, year, race_pair, similarity, friends) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range db.pendingSim {
		friends := 0
		if r.Friends {
			friends = 1
		}
		if _, err := stmt.Exec(db.runID, r.Year, r.RacePair, r.Similarity, friends); err != nil {
			return fmt.Errorf("insert similarity: %w", err)
		}
	}
	return nil
}

func (db *DB) flushDepartures(tx *sqlx.Tx) error {
	if len(db.pendingGone) == 0 {
		return nil
	}
	stmt, err := tx.Preparex(`INSERT INTO departures
		(run_id, reason, year, person_id, num_friends, num_groups, race, gender, alienation, year_in_school)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range db.pendingGone {
		p := r.Person
		_, err := stmt.Exec(db.runID, string(r.Reason), p.Year, p.ID, p.NumFriends, p.NumGroups,
			p.Race, p.Gender, p.Alienation, p.YearInSchool)
		if err != nil {
			return fmt.Errorf("insert departure %d: %w", p.ID, err)
		}
	}
	return nil
}

// Close flushes buffered records and closes the database connection.
func (db *DB) Close() error {
	var flushErr error
	if db.runID != "" {
		flushErr = db.Flush()
	}
	if err := db.conn.Close(); err != nil {
		return err
	}
	return flushErr
}

// SaveMeta stores a key-value pair for the current run.
func (db *DB) SaveMeta(key, value string) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		db.runID, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value of the current run.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", db.runID, key)
	return value, err
}

// PeopleInYear returns the population snapshot of one year of a run.
func (db *DB) PeopleInYear(runID string, year int) ([]report.PersonSnapshot, error) {
	var people []report.PersonSnapshot
	err := db.conn.Select(&people, `SELECT year, person_id, num_friends, num_groups, race, gender,
		alienation, year_in_school FROM people WHERE run_id = ? AND year = ? ORDER BY person_id`,
		runID, year,
	)
	return people, err
}

// FriendshipsInYear returns the edge list of one year of a run.
func (db *DB) FriendshipsInYear(runID string, year int) ([]report.FriendshipSnapshot, error) {
	var edges []report.FriendshipSnapshot
	err := db.conn.Select(&edges,
		"SELECT year, a, b FROM friendships WHERE run_id = ? AND year = ? ORDER BY a, b",
		runID, year,
	)
	return edges, err
}

// InteractionCounts returns the number of stored encounters per kind name.
func (db *DB) InteractionCounts(runID string) (map[string]int, error) {
	var rows []struct {
		Kind  string `db:"kind"`
		Count int    `db:"n"`
	}
	err := db.conn.Select(&rows,
		"SELECT kind, COUNT(*) AS n FROM interactions WHERE run_id = ? GROUP BY kind", runID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Count
	}
	return out, nil
}

// DepartureCount returns how many students left a run for the given reason.
func (db *DB) DepartureCount(runID string, reason report.DepartureReason) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM departures WHERE run_id = ? AND reason = ?",
		runID, string(reason))
	return n, err
}

// SimilarityCount returns how many meetings of a run were stored, and how
// many of them ended in friendship.
func (db *DB) SimilarityCount(runID string) (total, friends int, err error) {
	var row struct {
		Total   int `db:"total"`
		Friends int `db:"friends"`
	}
	err = db.conn.Get(&row, `SELECT COUNT(*) AS total, COALESCE(SUM(friends), 0) AS friends
		FROM similarities WHERE run_id = ?`, runID)
	return row.Total, row.Friends, err
}
