package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

// SQLiteStore persists catalog snapshots in a SQLite database.
//
// cluster_members carries no foreign key on agent_id on purpose: snapshots
// may contain dangling member references that the consistency validator is
// expected to surface, so the store must not reject them.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agents (
	position INTEGER NOT NULL,
	id       TEXT PRIMARY KEY,
	summary  TEXT NOT NULL,
	file_ref TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS clusters (
	position    INTEGER NOT NULL,
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cluster_members (
	cluster_name TEXT NOT NULL REFERENCES clusters(name) ON DELETE CASCADE,
	agent_id     TEXT NOT NULL,
	position     INTEGER NOT NULL,
	PRIMARY KEY (cluster_name, position)
);
`

// NewSQLiteStore opens (or creates) a SQLite-backed store at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &SQLiteStore{dbPath: dbPath, db: db}, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap catalog.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"cluster_members", "clusters", "agents"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "failed to clear table %s", table)
		}
	}

	for i, rec := range snap.Agents {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO agents (position, id, summary, file_ref) VALUES (?, ?, ?, ?)",
			i, rec.ID, rec.Summary, rec.FileRef); err != nil {
			return errors.Wrapf(err, "failed to insert agent '%s'", rec.ID)
		}
	}

	for i, rec := range snap.Clusters {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO clusters (position, name, description) VALUES (?, ?, ?)",
			i, rec.Name, rec.Description); err != nil {
			return errors.Wrapf(err, "failed to insert cluster '%s'", rec.Name)
		}
		for j, agentID := range rec.MemberIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO cluster_members (cluster_name, agent_id, position) VALUES (?, ?, ?)",
				rec.Name, agentID, j); err != nil {
				return errors.Wrapf(err, "failed to insert member '%s' of cluster '%s'", agentID, rec.Name)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit snapshot")
}

// Load reads the stored snapshot in declaration order. An empty database is
// reported as ErrNoCatalog; a saved empty catalog is indistinguishable from
// no save at all.
func (s *SQLiteStore) Load(ctx context.Context) (catalog.Snapshot, error) {
	var snap catalog.Snapshot

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, summary, file_ref FROM agents ORDER BY position")
	if err != nil {
		return snap, errors.Wrap(err, "failed to query agents")
	}
	defer rows.Close()
	for rows.Next() {
		var rec catalog.AgentRecord
		if err := rows.Scan(&rec.ID, &rec.Summary, &rec.FileRef); err != nil {
			return snap, errors.Wrap(err, "failed to scan agent row")
		}
		snap.Agents = append(snap.Agents, rec)
	}
	if err := rows.Err(); err != nil {
		return snap, errors.Wrap(err, "failed to iterate agent rows")
	}

	clusterRows, err := s.db.QueryContext(ctx,
		"SELECT name, description FROM clusters ORDER BY position")
	if err != nil {
		return snap, errors.Wrap(err, "failed to query clusters")
	}
	defer clusterRows.Close()
	for clusterRows.Next() {
		var rec catalog.ClusterRecord
		if err := clusterRows.Scan(&rec.Name, &rec.Description); err != nil {
			return snap, errors.Wrap(err, "failed to scan cluster row")
		}
		snap.Clusters = append(snap.Clusters, rec)
	}
	if err := clusterRows.Err(); err != nil {
		return snap, errors.Wrap(err, "failed to iterate cluster rows")
	}

	for i := range snap.Clusters {
		memberRows, err := s.db.QueryContext(ctx,
			"SELECT agent_id FROM cluster_members WHERE cluster_name = ? ORDER BY position",
			snap.Clusters[i].Name)
		if err != nil {
			return snap, errors.Wrapf(err, "failed to query members of '%s'", snap.Clusters[i].Name)
		}
		for memberRows.Next() {
			var agentID string
			if err := memberRows.Scan(&agentID); err != nil {
				memberRows.Close()
				return snap, errors.Wrap(err, "failed to scan member row")
			}
			snap.Clusters[i].MemberIDs = append(snap.Clusters[i].MemberIDs, agentID)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return snap, errors.Wrap(err, "failed to iterate member rows")
		}
		memberRows.Close()
	}

	if len(snap.Agents) == 0 && len(snap.Clusters) == 0 {
		return snap, ErrNoCatalog
	}
	return snap, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
