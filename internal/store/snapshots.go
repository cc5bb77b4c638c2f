package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// fixed width so fetched_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot is one fetched set of work items from a source.
type Snapshot struct {
	ID        string
	Source    string
	FetchedAt time.Time
	Items     []allocation.WorkItem
}

func (db *DB) SaveSnapshot(source string, items []allocation.WorkItem) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Source:    source,
		FetchedAt: db.now().UTC(),
		Items:     items,
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO snapshots (id, source, fetched_at, item_count) VALUES (?, ?, ?, ?)",
		snap.ID, source, snap.FetchedAt.Format(timeLayout), len(items),
	); err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO work_items (snapshot_id, position, item_id, name, start_on, due_on, completed, allocation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("preparing work item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		var text sql.NullString
		if item.AllocationText != nil {
			text = sql.NullString{String: *item.AllocationText, Valid: true}
		}
		if _, err := stmt.Exec(snap.ID, i, item.ID, item.Name, item.StartDate, item.DueDate, item.Completed, text); err != nil {
			return nil, fmt.Errorf("inserting work item %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}
	return snap, nil
}

// LatestSnapshot returns the newest snapshot for source, or nil if there is none.
func (db *DB) LatestSnapshot(source string) (*Snapshot, error) {
	var (
		snap      Snapshot
		fetchedAt string
	)
	err := db.QueryRow(
		`SELECT id, source, fetched_at FROM snapshots
		 WHERE source = ?
		 ORDER BY fetched_at DESC, rowid DESC
		 LIMIT 1`,
		source,
	).Scan(&snap.ID, &snap.Source, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}

	snap.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at %q: %w", fetchedAt, err)
	}

	snap.Items, err = db.snapshotItems(snap.ID)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (db *DB) snapshotItems(snapshotID string) ([]allocation.WorkItem, error) {
	rows, err := db.Query(
		`SELECT item_id, name, start_on, due_on, completed, allocation
		 FROM work_items WHERE snapshot_id = ? ORDER BY position ASC`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying work items: %w", err)
	}
	defer rows.Close()

	items := []allocation.WorkItem{}
	for rows.Next() {
		var (
			item allocation.WorkItem
			text sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.StartDate, &item.DueDate, &item.Completed, &text); err != nil {
			return nil, fmt.Errorf("scanning work item: %w", err)
		}
		if text.Valid {
			s := text.String
			item.AllocationText = &s
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PruneSnapshots removes all but the newest keep snapshots of source.
func (db *DB) PruneSnapshots(source string, keep int) (int64, error) {
	res, err := db.Exec(
		`DELETE FROM snapshots WHERE source = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE source = ? ORDER BY fetched_at DESC, rowid DESC LIMIT ?
		)`,
		source, source, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	if _, err := db.Exec("DELETE FROM work_items WHERE snapshot_id NOT IN (SELECT id FROM snapshots)"); err != nil {
		return 0, fmt.Errorf("pruning work items: %w", err)
	}
	return res.RowsAffected()
}
