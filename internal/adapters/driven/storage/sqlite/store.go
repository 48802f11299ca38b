package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed graph store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.GraphStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.neuralmap/data/graphs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".neuralmap", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "graphs.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Save stores or replaces a graph.
func (s *Store) Save(ctx context.Context, graph *domain.NeuralGraph) error {
	if graph == nil || graph.ID == "" {
		return fmt.Errorf("saving graph without id: %w", domain.ErrInvalidInput)
	}

	document, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshalling graph: %w", err)
	}

	createdAt := graph.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := graph.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphs (id, title, project_path, user_id, node_count, edge_count, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			project_path = excluded.project_path,
			user_id = excluded.user_id,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, graph.ID, graph.Title, graph.ProjectPath, graph.UserID,
		len(graph.Nodes), len(graph.Edges), string(document), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	return nil
}

// Get retrieves a graph by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.NeuralGraph, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project_path, document FROM graphs WHERE id = ?
	`, id)
	return scanGraph(row)
}

// Latest returns the most recently updated graph for projectPath.
func (s *Store) Latest(ctx context.Context, projectPath string) (*domain.NeuralGraph, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project_path, document FROM graphs
		WHERE project_path = ?
		ORDER BY updated_at DESC, rowid DESC
		LIMIT 1
	`, projectPath)
	return scanGraph(row)
}

// List returns summaries of all graphs, newest first.
func (s *Store) List(ctx context.Context) ([]domain.GraphSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, project_path, node_count, edge_count, created_at, updated_at
		FROM graphs ORDER BY updated_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying graphs: %w", err)
	}
	defer rows.Close()

	var summaries []domain.GraphSummary
	for rows.Next() {
		var g domain.GraphSummary
		if err := rows.Scan(&g.ID, &g.Title, &g.ProjectPath, &g.NodeCount, &g.EdgeCount,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning graph summary: %w", err)
		}
		summaries = append(summaries, g)
	}
	return summaries, rows.Err()
}

// Delete removes a graph.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM graphs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting graph: %w", err)
	}
	return nil
}

func scanGraph(row *sql.Row) (*domain.NeuralGraph, error) {
	var projectPath, document string
	if err := row.Scan(&projectPath, &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning graph: %w", err)
	}

	var graph domain.NeuralGraph
	if err := json.Unmarshal([]byte(document), &graph); err != nil {
		return nil, fmt.Errorf("unmarshalling graph: %w", err)
	}
	graph.ProjectPath = projectPath
	return &graph, nil
}
