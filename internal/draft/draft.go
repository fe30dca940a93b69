// Package draft persists in-progress overstay limit edits between CLI runs.
package draft

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/gatekeeper/internal/overstay"
)

// ErrNotFound is returned when a community has no saved draft.
var ErrNotFound = errors.New("no draft found")

// Draft is an admin's unsaved edit of a community's limits.
type Draft struct {
	CommunityID string          `json:"community_id"`
	Original    overstay.Limits `json:"original"`
	Limits      overstay.Limits `json:"draft"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Editor rebuilds the edit session the draft was saved from.
func (d *Draft) Editor() *overstay.Editor {
	return overstay.ResumeEditor(d.Original, d.Limits)
}

// Repository stores drafts in SQLite, one per community.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a draft repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the draft for a community, or ErrNotFound.
func (r *Repository) Get(communityID string) (*Draft, error) {
	var d Draft
	var origJSON, draftJSON string
	err := r.db.QueryRow(
		"SELECT community_id, original_json, draft_json, created_at, updated_at FROM overstay_drafts WHERE community_id = ?",
		communityID,
	).Scan(&d.CommunityID, &origJSON, &draftJSON, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	if err := json.Unmarshal([]byte(origJSON), &d.Original); err != nil {
		return nil, fmt.Errorf("decoding original limits: %w", err)
	}
	if err := json.Unmarshal([]byte(draftJSON), &d.Limits); err != nil {
		return nil, fmt.Errorf("decoding draft limits: %w", err)
	}

	return &d, nil
}

// Put stores the editor's current original and draft for a community,
// replacing any existing draft.
func (r *Repository) Put(communityID string, e *overstay.Editor) error {
	origJSON, err := json.Marshal(e.Original())
	if err != nil {
		return fmt.Errorf("encoding original limits: %w", err)
	}
	draftJSON, err := json.Marshal(e.Draft())
	if err != nil {
		return fmt.Errorf("encoding draft limits: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO overstay_drafts (community_id, original_json, draft_json) VALUES (?, ?, ?)
		 ON CONFLICT(community_id) DO UPDATE SET
		     original_json = excluded.original_json,
		     draft_json    = excluded.draft_json,
		     updated_at    = CURRENT_TIMESTAMP`,
		communityID, string(origJSON), string(draftJSON),
	)
	if err != nil {
		return fmt.Errorf("storing draft: %w", err)
	}

	return nil
}

// Delete removes a community's draft. Deleting a missing draft is not an error.
func (r *Repository) Delete(communityID string) error {
	if _, err := r.db.Exec("DELETE FROM overstay_drafts WHERE community_id = ?", communityID); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}
