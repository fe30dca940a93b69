package scanlog

import (
	"database/sql"
	"fmt"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

const scanColumns = "id, community_id, payload, pass_id, visitor_id, result, message, scanned_at"

// Repository stores scans in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a scan log repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record appends a scan and returns it as stored.
func (r *Repository) Record(s Scan) (*Scan, error) {
	if s.Payload == "" {
		return nil, fmt.Errorf("scan payload is required")
	}
	if !s.Result.Valid() {
		return nil, fmt.Errorf("invalid scan result %q", s.Result)
	}

	result, err := r.db.Exec(
		`INSERT INTO gate_scans (community_id, payload, pass_id, visitor_id, result, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.CommunityID, s.Payload, s.PassID, s.VisitorID, string(s.Result), s.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	stored, err := scanRow(r.db.QueryRow("SELECT "+scanColumns+" FROM gate_scans WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading back scan: %w", err)
	}

	return stored, nil
}

// List returns the most recent scans, newest first. A non-positive limit
// uses DefaultListLimit.
func (r *Repository) List(limit int) (scans []*Scan, err error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		"SELECT "+scanColumns+" FROM gate_scans ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scan: %w", err)
		}
		scans = append(scans, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scans: %w", err)
	}

	return scans, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(row rowScanner) (*Scan, error) {
	var s Scan
	var result string
	if err := row.Scan(&s.ID, &s.CommunityID, &s.Payload, &s.PassID, &s.VisitorID, &result, &s.Message, &s.ScannedAt); err != nil {
		return nil, err
	}
	s.Result = Result(result)
	return &s, nil
}
