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

	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.NodeStore = (*Store)(nil)

// Store is a SQLite-backed node store. Sync run history shares the same
// database through SyncRunStore.
type Store struct {
	db       *sql.DB
	path     string
	scope    string
	typeName func(typeTag string) string
	declared map[string]bool
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lakesync/data/lakesync.db.
// scope names the dataset the store reads and writes; nodes of other
// scopes in the same database are invisible to it. typeName maps a document type tag to its collection name. When
// declaredTypes is non-empty only those type tags get a collection.
func NewStore(dataDir, scope string, typeName func(typeTag string) string, declaredTypes []string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lakesync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lakesync.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	declared := make(map[string]bool, len(declaredTypes))
	for _, t := range declaredTypes {
		declared[t] = true
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		scope:    scope,
		typeName: typeName,
		declared: declared,
	}

	// Run migrations
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

// Scope returns the dataset scope of the store.
func (s *Store) Scope() string {
	return s.scope
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SyncRunStore returns a SyncRunStore interface backed by this store.
func (s *Store) SyncRunStore() driven.SyncRunStore {
	return &syncRunStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_nodes.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// GetNodeByID returns the node with the given logical id in any collection.
func (s *Store) GetNodeByID(ctx context.Context, id string) (*domain.Node, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uid, type_name, document FROM nodes WHERE scope = ? AND id = ?
	`, s.scope, id)
	return scanNode(row)
}

// CollectionForType returns the collection for a document type tag.
func (s *Store) CollectionForType(_ context.Context, typeTag string) (driven.Collection, error) {
	if typeTag == "" {
		return nil, fmt.Errorf("%w: empty type", domain.ErrUnsupportedType)
	}
	if len(s.declared) > 0 && !s.declared[typeTag] {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, typeTag)
	}
	return &collection{store: s, typeName: s.typeName(typeTag)}, nil
}

// Collection returns the collection named typeName.
func (s *Store) Collection(ctx context.Context, typeName string) (driven.Collection, error) {
	var exists bool
	row := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM nodes WHERE scope = ? AND type_name = ?)", s.scope, typeName)
	if err := row.Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &collection{store: s, typeName: typeName}, nil
}

// TypeNames lists the collections that currently hold nodes.
func (s *Store) TypeNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT type_name FROM nodes WHERE scope = ? ORDER BY type_name", s.scope)
	if err != nil {
		return nil, fmt.Errorf("querying type names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning type name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type names: %w", err)
	}
	return names, nil
}

// ==================== Collection ====================

// collection is a view of one type inside a Store.
type collection struct {
	store    *Store
	typeName string
}

var _ driven.Collection = (*collection)(nil)

func (c *collection) TypeName() string {
	return c.typeName
}

func (c *collection) GetNodeByID(ctx context.Context, id string) (*domain.Node, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, uid, type_name, document FROM nodes WHERE scope = ? AND id = ? AND type_name = ?
	`, c.store.scope, id, c.typeName)
	return scanNode(row)
}

// AddNode inserts node. A node with the same id in another collection is
// moved into this one.
func (c *collection) AddNode(ctx context.Context, node domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("%w: node id is empty", domain.ErrInvalidInput)
	}
	document, err := marshalDocument(node.Document)
	if err != nil {
		return err
	}

	res, err := c.store.db.ExecContext(ctx, `
		INSERT INTO nodes (scope, id, uid, type_name, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope, id) DO UPDATE SET
			uid = excluded.uid,
			type_name = excluded.type_name,
			document = excluded.document,
			updated_at = excluded.updated_at
		WHERE nodes.type_name <> excluded.type_name
	`, c.store.scope, node.ID, node.UID, c.typeName, document, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("adding node: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adding node: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: node %s already exists in %s", domain.ErrInvalidInput, node.ID, c.typeName)
	}
	return nil
}

func (c *collection) UpdateNode(ctx context.Context, node domain.Node) error {
	document, err := marshalDocument(node.Document)
	if err != nil {
		return err
	}

	res, err := c.store.db.ExecContext(ctx, `
		UPDATE nodes SET uid = ?, document = ?, updated_at = ?
		WHERE scope = ? AND id = ? AND type_name = ?
	`, node.UID, document, time.Now().UTC().Format(time.RFC3339), c.store.scope, node.ID, c.typeName)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *collection) RemoveNode(ctx context.Context, id string) error {
	_, err := c.store.db.ExecContext(ctx,
		"DELETE FROM nodes WHERE scope = ? AND id = ? AND type_name = ?", c.store.scope, id, c.typeName)
	if err != nil {
		return fmt.Errorf("removing node: %w", err)
	}
	return nil
}

func (c *collection) Nodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, uid, type_name, document FROM nodes WHERE scope = ? AND type_name = ? ORDER BY id
	`, c.store.scope, c.typeName)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		node, err := scanNodeRows(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

// ==================== Helper Functions ====================

func marshalDocument(doc domain.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: node has no document", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshalling document: %w", err)
	}
	return string(data), nil
}

// scanNode scans a single node row.
func scanNode(row *sql.Row) (*domain.Node, error) {
	var node domain.Node
	var document string

	if err := row.Scan(&node.ID, &node.UID, &node.TypeName, &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}

	if err := json.Unmarshal([]byte(document), &node.Document); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	return &node, nil
}

// scanNodeRows scans a node from *sql.Rows.
func scanNodeRows(rows *sql.Rows) (*domain.Node, error) {
	var node domain.Node
	var document string

	if err := rows.Scan(&node.ID, &node.UID, &node.TypeName, &document); err != nil {
		return nil, fmt.Errorf("scanning node: %w", err)
	}

	if err := json.Unmarshal([]byte(document), &node.Document); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	return &node, nil
}
