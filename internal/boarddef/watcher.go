package boarddef

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/board"
)

const (
	defaultDebounce = 500 * time.Millisecond
	resultBuffer    = 64
)

// Importer stores a parsed board. board.Service satisfies it.
type Importer interface {
	ImportBoard(ctx context.Context, b *models.BoardConfig) (*board.ImportResult, error)
}

// Result is the outcome of re-importing one changed file
type Result struct {
	Path       string
	Definition *Definition
	Import     *board.ImportResult
	// Removed is set when the file disappeared. The stored board is kept.
	Removed bool
	Err     error
}

// Watcher re-imports definition files in a directory when they change.
// Bursts of writes to the same file are collapsed, and files whose content
// hash did not change are ignored.
type Watcher struct {
	dir      string
	importer Importer
	logger   *slog.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string][sha256.Size]byte

	results chan Result
	dropped atomic.Int64
}

// WatchOption configures a Watcher
type WatchOption func(*Watcher)

// WithDebounce sets how long changes are collected before processing
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher over dir
func NewWatcher(dir string, importer Importer, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		dir:      dir,
		importer: importer,
		logger:   slog.Default(),
		debounce: defaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string][sha256.Size]byte),
		results:  make(chan Result, resultBuffer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Results returns processed changes. The channel is closed when the
// watcher stops.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Dropped returns how many results were discarded because nobody read them
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// SyncAll imports every definition currently in the directory and records
// their hashes, so unchanged files are not imported again on the first event.
func (w *Watcher) SyncAll(ctx context.Context) []Result {
	defs, err := LoadDir(w.dir)
	var results []Result
	if err != nil {
		results = append(results, Result{Path: w.dir, Err: err})
	}
	for _, def := range defs {
		data, err := os.ReadFile(def.Path)
		if err != nil {
			results = append(results, Result{Path: def.Path, Err: err})
			continue
		}
		results = append(results, w.importDefinition(ctx, def, sha256.Sum256(data)))
	}
	return results
}

// Start begins watching. Processing stops when ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", w.dir, err)
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	go w.processEvents(ctx)

	w.logger.Info("board definition watcher started",
		"dir", w.dir,
		"debounce", w.debounce)
	return nil
}

// Close stops the underlying file watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.results)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !IsDefinitionFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = event.Op
			w.pendingMu.Unlock()
			w.logger.Debug("board definition change detected", "path", event.Name, "op", event.Op.String())

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := slices.Sorted(maps.Keys(w.pending))
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for _, path := range paths {
		res, ok := w.apply(ctx, path)
		if !ok {
			continue
		}
		select {
		case w.results <- res:
		default:
			w.dropped.Add(1)
			w.logger.Warn("watch result dropped", "path", path)
		}
	}
}

// apply re-imports one file. ok is false when there is nothing to report.
func (w *Watcher) apply(ctx context.Context, path string) (Result, bool) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		w.hashMu.Lock()
		_, known := w.hashes[path]
		delete(w.hashes, path)
		w.hashMu.Unlock()
		if !known {
			return Result{}, false
		}
		w.logger.Info("board definition removed, stored board kept", "path", path)
		return Result{Path: path, Removed: true}, true
	}
	if err != nil {
		return Result{Path: path, Err: err}, true
	}

	sum := sha256.Sum256(data)
	w.hashMu.Lock()
	prev, known := w.hashes[path]
	w.hashMu.Unlock()
	if known && prev == sum {
		return Result{}, false
	}

	def, err := parseFile(path, data)
	if err != nil {
		w.logger.Warn("board definition rejected", "path", path, "error", err)
		return Result{Path: path, Err: err}, true
	}
	return w.importDefinition(ctx, def, sum), true
}

func (w *Watcher) importDefinition(ctx context.Context, def *Definition, sum [sha256.Size]byte) Result {
	res := Result{Path: def.Path, Definition: def}
	imported, err := w.importer.ImportBoard(ctx, def.Board)
	if err != nil {
		w.logger.Warn("board import failed", "path", def.Path, "error", err)
		res.Err = err
		res.Import = imported
		return res
	}
	w.hashMu.Lock()
	w.hashes[def.Path] = sum
	w.hashMu.Unlock()

	res.Import = imported
	w.logger.Info("board definition imported",
		"path", def.Path,
		"board_id", imported.Board.ID,
		"version", imported.Board.Version,
		"changed", imported.Changed)
	return res
}
