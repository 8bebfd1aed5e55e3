package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/dashboard/storage"
)

const (
	defaultSequenceBandwidth = 100
)

// Backend owns the BadgerDB instance shared by the user and session
// repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// BackendOption configures OpenBackend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	logger     *slog.Logger
	syncWrites bool
}

// WithLogger routes badger's own log output to logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BackendOption {
	return func(c *backendConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSyncWrites makes every commit fsync before returning.
func WithSyncWrites(sync bool) BackendOption {
	return func(c *backendConfig) {
		c.syncWrites = sync
	}
}

// slogAdapter satisfies badger.Logger. Badger is chatty at info level, so
// its info messages are logged at debug.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...), "component", "badger")
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...), "component", "badger")
}

func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...), "component", "badger")
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...), "component", "badger")
}

// OpenBackend opens the database directory at filePath, creating it if
// needed. With inMemory set, filePath is ignored and nothing touches disk.
func OpenBackend(filePath string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	cfg := &backendConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	var badgerOpts badger.Options
	if inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(filePath, 0o755); err != nil {
			return nil, fmt.Errorf("database directory %s: %w", filePath, err)
		}
		badgerOpts = badger.DefaultOptions(filePath).WithSyncWrites(cfg.syncWrites)
	}
	badgerOpts.Logger = &slogAdapter{logger: cfg.logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("database opened", "path", filePath, "in_memory", inMemory)
	return &Backend{
		db:     db,
		logger: cfg.logger,
	}, nil
}

// Close closes the database. Closing twice is a no-op.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a transaction.
// If isWrite is true, creates a read-write transaction that fn must commit.
// The transaction is always discarded afterwards, which rolls back anything
// fn did not commit.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns the named ID sequence. Callers release it.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), defaultSequenceBandwidth)
}
