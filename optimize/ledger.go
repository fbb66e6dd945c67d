package optimize

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/findpath"
	"gopkg.in/yaml.v3"
)

// Run one sweep entry
type Run struct {
	ID     int64
	Config config.Config
	Err    string // empty if the run succeeded
	Stat   findpath.AsmStat
	Score  float64
}

// Ledger records every run of a sweep in a SQLite database
type Ledger struct {
	db *sql.DB
}

func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	l := &Ledger{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) initSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kmer_length INTEGER,
		params TEXT,
		error TEXT,
		contigs INTEGER,
		total_length INTEGER,
		n50 INTEGER,
		longest INTEGER,
		score REAL
	);`)
	return err
}

func (l *Ledger) Record(ctx context.Context, r *Run) error {
	var buf bytes.Buffer
	if err := r.Config.WriteYAML(&buf); err != nil {
		return err
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (kmer_length, params, error, contigs, total_length, n50, longest, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Config.Kmer, buf.String(), r.Err, r.Stat.Count, r.Stat.TotalLen, r.Stat.N50, r.Stat.Longest, r.Score)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

func scanRun(sc interface{ Scan(...interface{}) error }) (r Run, err error) {
	var params string
	if err = sc.Scan(&r.ID, &params, &r.Err, &r.Stat.Count, &r.Stat.TotalLen, &r.Stat.N50, &r.Stat.Longest, &r.Score); err != nil {
		return
	}
	err = yaml.Unmarshal([]byte(params), &r.Config)
	return
}

const runColumns = `id, params, error, contigs, total_length, n50, longest, score`

// Runs all recorded runs in insertion order
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Best the successful run with the highest score, the earliest on ties
func (l *Ledger) Best(ctx context.Context) (Run, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE error = '' ORDER BY score DESC, id ASC LIMIT 1`)
	return scanRun(row)
}
