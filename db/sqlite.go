package db

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
    CREATE TABLE IF NOT EXISTS parameters (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        n_rows INTEGER NOT NULL,
        n_cols INTEGER NOT NULL,
        data BLOB NOT NULL
    );
    CREATE TABLE IF NOT EXISTS training_run (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        epochs INTEGER,
        samples INTEGER,
        learning_rate REAL,
        seed INTEGER,
        final_loss REAL,
        trained_at DATETIME
    );
    `

// writeSQLite creates the schema in a fresh database at path and stores every tensor
// plus the run record in one transaction.
func writeSQLite(path string, tensors []Tensor, info RunInfo) error {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("db: open %s: %w", path, err)
	}
	defer database.Close()

	if _, err := database.Exec(schema); err != nil {
		return fmt.Errorf("db: create tables: %w", err)
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR REPLACE INTO parameters (name, n_rows, n_cols, data)
        VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, t := range tensors {
		if _, err := stmt.Exec(t.Name, t.Rows, t.Cols, encodeFloats(t.Data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("db: save %s: %w", t.Name, err)
		}
	}

	_, err = tx.Exec(`
        INSERT OR REPLACE INTO training_run (id, epochs, samples, learning_rate, seed, final_loss, trained_at)
        VALUES (1, ?, ?, ?, ?, ?, ?)`,
		info.Epochs, info.Samples, info.LearningRate, info.Seed, info.FinalLoss, info.TrainedAt.UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("db: save training run: %w", err)
	}

	return tx.Commit()
}

func readSQLite(path string) ([]Tensor, RunInfo, error) {
	database, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, RunInfo{}, fmt.Errorf("db: open %s: %w", path, err)
	}
	defer database.Close()

	rows, err := database.Query(`SELECT name, n_rows, n_cols, data FROM parameters ORDER BY id`)
	if err != nil {
		return nil, RunInfo{}, fmt.Errorf("db: query parameters: %w", err)
	}
	defer rows.Close()

	var tensors []Tensor
	for rows.Next() {
		var t Tensor
		var blob []byte
		if err := rows.Scan(&t.Name, &t.Rows, &t.Cols, &blob); err != nil {
			return nil, RunInfo{}, err
		}
		if t.Data, err = decodeFloats(blob); err != nil {
			return nil, RunInfo{}, fmt.Errorf("db: decode %s: %w", t.Name, err)
		}
		tensors = append(tensors, t)
	}
	if err := rows.Err(); err != nil {
		return nil, RunInfo{}, err
	}

	var info RunInfo
	err = database.QueryRow(`
        SELECT epochs, samples, learning_rate, seed, final_loss, trained_at
        FROM training_run
        WHERE id = 1`).Scan(&info.Epochs, &info.Samples, &info.LearningRate, &info.Seed, &info.FinalLoss, &info.TrainedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, RunInfo{}, fmt.Errorf("db: query training run: %w", err)
	}
	return tensors, info, nil
}

func encodeFloats(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(buf))
	}
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return values, nil
}
