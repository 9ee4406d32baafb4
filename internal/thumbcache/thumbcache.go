package thumbcache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"mc-gallery/internal/logging"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Index records the source-content hash each thumbnail was generated
// from. All methods are safe for concurrent use by the worker pool.
type Index struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the index database at dbPath. The parent
// directory must already exist; startup.LoadConfig takes care of that.
func Open(ctx context.Context, dbPath string) (*Index, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open thumbnail index: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close thumbnail index after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to thumbnail index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close thumbnail index after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize thumbnail index schema: %w", err)
	}

	logging.Debug("Thumbnail index ready at %s", dbPath)
	return idx, nil
}

func (i *Index) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS thumbnails (
		canonical_name TEXT PRIMARY KEY,
		source_hash TEXT NOT NULL,
		thumbnail_name TEXT NOT NULL,
		generated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_thumbnails_hash ON thumbnails(source_hash);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := i.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}

// Lookup returns the recorded thumbnail name for canonicalName when the
// stored source hash matches sourceHash, and "" otherwise.
func (i *Index) Lookup(ctx context.Context, canonicalName, sourceHash string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var storedHash, thumbName string
	err := i.db.QueryRowContext(ctx,
		"SELECT source_hash, thumbnail_name FROM thumbnails WHERE canonical_name = ?",
		canonicalName,
	).Scan(&storedHash, &thumbName)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("thumbnail index lookup for %s: %w", canonicalName, err)
	}

	if storedHash != sourceHash {
		return "", nil
	}
	return thumbName, nil
}

// Record stores (or replaces) the thumbnail entry for canonicalName.
func (i *Index) Record(ctx context.Context, canonicalName, sourceHash, thumbName string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := i.db.ExecContext(ctx, `
		INSERT INTO thumbnails (canonical_name, source_hash, thumbnail_name)
		VALUES (?, ?, ?)
		ON CONFLICT(canonical_name) DO UPDATE SET
			source_hash = excluded.source_hash,
			thumbnail_name = excluded.thumbnail_name,
			generated_at = strftime('%s', 'now')`,
		canonicalName, sourceHash, thumbName,
	)
	if err != nil {
		return fmt.Errorf("thumbnail index record for %s: %w", canonicalName, err)
	}
	return nil
}

// Prune removes entries whose canonical name is not in keep, so renamed or
// deleted sources do not accumulate stale rows across rebuilds.
func (i *Index) Prune(ctx context.Context, keep map[string]bool) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, "SELECT canonical_name FROM thumbnails")
	if err != nil {
		return 0, fmt.Errorf("thumbnail index prune scan: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return 0, fmt.Errorf("thumbnail index prune scan: %w", err)
		}
		if !keep[name] {
			stale = append(stale, name)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("thumbnail index prune scan: %w", err)
	}

	var pruned int64
	for _, name := range stale {
		res, err := i.db.ExecContext(ctx, "DELETE FROM thumbnails WHERE canonical_name = ?", name)
		if err != nil {
			return pruned, fmt.Errorf("thumbnail index prune delete %s: %w", name, err)
		}
		n, _ := res.RowsAffected()
		pruned += n
	}

	if pruned > 0 {
		logging.Debug("Pruned %d stale thumbnail index entries", pruned)
	}
	return pruned, nil
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}
