// Package sqlite provides a SQLite-backed ballot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ballot "github.com/jicksta/ballot-box"
	"github.com/jicksta/ballot-box/internal/sqlitemigrate"
	"github.com/jicksta/ballot-box/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists proposals and vote marks in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Init records owner unless an owner is already stored, then returns the stored owner.
func (s *Store) Init(ctx context.Context, owner ballot.Identity) (ballot.Identity, error) {
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO ballot_state (id, owner, proposal_count, created_at) VALUES (1, ?, 0, ?)`,
		string(owner), time.Now().UTC().UnixMilli(),
	); err != nil {
		return "", fmt.Errorf("record owner: %w", err)
	}
	var stored string
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT owner FROM ballot_state WHERE id = 1`).Scan(&stored); err != nil {
		return "", fmt.Errorf("read owner: %w", err)
	}
	return ballot.Identity(stored), nil
}

func (s *Store) ProposalCount(ctx context.Context) (uint32, error) {
	var count int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT proposal_count FROM ballot_state WHERE id = 1`).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read proposal count: %w", err)
	}
	return uint32(count), nil
}

func (s *Store) GetProposal(ctx context.Context, id uint32) (ballot.Proposal, error) {
	var (
		description string
		votes       int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT description, votes FROM proposals WHERE id = ?`, int64(id),
	).Scan(&description, &votes)
	if errors.Is(err, sql.ErrNoRows) {
		return ballot.Proposal{}, ballot.ErrProposalDoesNotExist
	}
	if err != nil {
		return ballot.Proposal{}, fmt.Errorf("read proposal %d: %w", id, err)
	}
	return ballot.Proposal{Description: description, Votes: uint32(votes)}, nil
}

func (s *Store) HasVoted(ctx context.Context, id uint32, voter ballot.Identity) (bool, error) {
	var found int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM vote_marks WHERE proposal_id = ? AND voter = ?`, int64(id), string(voter),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read vote mark: %w", err)
	}
	return true, nil
}

// Commit writes the changeset in a single transaction.
func (s *Store) Commit(ctx context.Context, cs *ballot.Changeset) error {
	if cs.Empty() {
		return nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if cs.Count != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE ballot_state SET proposal_count = ? WHERE id = 1 AND proposal_count <= ?`,
			int64(*cs.Count), int64(*cs.Count),
		)
		if err != nil {
			return fmt.Errorf("update proposal count: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return fmt.Errorf("update proposal count to %d: store not initialized or count would decrease", *cs.Count)
		}
	}
	for id, proposal := range cs.Proposals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proposals (id, description, votes) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET description = excluded.description, votes = excluded.votes`,
			int64(id), proposal.Description, int64(proposal.Votes),
		); err != nil {
			return fmt.Errorf("write proposal %d: %w", id, err)
		}
	}
	now := time.Now().UTC().UnixMilli()
	for _, mark := range cs.VoteMarks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vote_marks (proposal_id, voter, cast_at) VALUES (?, ?, ?)`,
			int64(mark.ProposalID), string(mark.Voter), now,
		); err != nil {
			if isUniqueViolation(err) {
				return ballot.ErrAlreadyVoted
			}
			return fmt.Errorf("write vote mark (%d, %s): %w", mark.ProposalID, mark.Voter, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ ballot.BallotStore = (*Store)(nil)
