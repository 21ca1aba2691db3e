package mirror

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/droopymiller/yoink/internal/config"
)

// ArchiveDirName is the subdirectory of a collection folder that holds
// superseded document versions. It grows monotonically; pruning it is out
// of scope here.
const ArchiveDirName = "archive"

// archiveTimestampLayout names archived files at second granularity.
const archiveTimestampLayout = "20060102_150405"

// Task is one unit of work: mirror a single item of a collection.
// Tasks are ephemeral, created by the orchestrator and consumed by exactly
// one Engine.Sync call.
type Task struct {
	Collection *config.Collection
	Item       string
}

// tempPath is the task-owned working file. It must not survive the task's
// terminal state.
func (t Task) tempPath() string {
	return filepath.Join(t.Collection.Folder, t.Item+"_new.pdf")
}

// Status is the terminal outcome of a sync task.
type Status int

const (
	// StatusDownloaded means no prior copy existed and the document was
	// written for the first time.
	StatusDownloaded Status = iota
	// StatusUpdated means the prior copy differed, was archived, and the
	// new content replaced it.
	StatusUpdated
	// StatusUpToDate means the fetched content matched the local copy
	// byte for byte; nothing was written.
	StatusUpToDate
	// StatusNotFound means the resolver could not produce a document URL.
	StatusNotFound
	// StatusFetchFailed means the download did not complete.
	StatusFetchFailed
	// StatusArchiveFailed means moving the old copy into the archive
	// folder failed.
	StatusArchiveFailed
	// StatusWriteFailed means a filesystem transition around the final
	// path failed.
	StatusWriteFailed
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusUpdated:
		return "updated"
	case StatusUpToDate:
		return "up-to-date"
	case StatusNotFound:
		return "unresolved"
	case StatusFetchFailed:
		return "fetch-failed"
	case StatusArchiveFailed:
		return "archive-failed"
	case StatusWriteFailed:
		return "write-failed"
	default:
		return "unknown"
	}
}

// Failed reports whether the status is a failure terminal state.
func (s Status) Failed() bool {
	switch s {
	case StatusNotFound, StatusFetchFailed, StatusArchiveFailed, StatusWriteFailed:
		return true
	default:
		return false
	}
}

// Result is the terminal state of one task.
type Result struct {
	Task      Task
	Status    Status
	FinalPath string // set for the success statuses
	Err       error  // set for fetch/write/archive failures
}

// TitleFunc reads an embedded document title from a fetched file.
// ok=false means no usable title; the caller falls back to the item
// identifier. Implementations must swallow parse failures.
type TitleFunc func(path string) (title string, ok bool)

// EngineConfig holds the collaborators of an Engine. Zero-value fields get
// working defaults from NewEngine.
type EngineConfig struct {
	// Resolver turns identifiers into document URLs.
	Resolver Resolver

	// Fetcher downloads resolved URLs.
	Fetcher Fetcher

	// Title derives a display name under the title naming policy.
	Title TitleFunc

	// Logger for per-task status lines.
	Logger *log.Logger

	// Now supplies archive timestamps. Overridable in tests.
	Now func() time.Time
}

// Engine runs the per-task state machine:
//
//	resolving → fetching → comparing → {no-op | first-write | replacing} → done
//
// or failed, absorbing, from any state on unrecoverable error. All
// collaborators are injected so the pool size, HTTP client, and clock are
// per-run state rather than globals.
type Engine struct {
	resolver Resolver
	fetcher  Fetcher
	title    TitleFunc
	logger   *log.Logger
	now      func() time.Time
}

// NewEngine creates an engine. A nil cfg, or nil fields within it, fall
// back to HTTP resolver/fetcher with default timeouts, a no-title
// extractor, a stderr logger, and the wall clock.
func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = &EngineConfig{}
	}
	e := &Engine{
		resolver: cfg.Resolver,
		fetcher:  cfg.Fetcher,
		title:    cfg.Title,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if e.resolver == nil {
		e.resolver = NewHTTPResolver(nil)
	}
	if e.fetcher == nil {
		e.fetcher = NewHTTPFetcher(nil)
	}
	if e.title == nil {
		e.title = func(string) (string, bool) { return "", false }
	}
	if e.logger == nil {
		e.logger = log.New(os.Stderr, "[mirror] ", log.LstdFlags)
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Sync runs one task to a terminal state. It never returns an error;
// failures are folded into the Result so one task can never abort its
// siblings.
func (e *Engine) Sync(ctx context.Context, task Task) Result {
	col := task.Collection
	e.logf(task, "checking")

	// resolving
	resolved, found := e.resolver.Resolve(ctx, col.BaseURL, task.Item)
	if !found {
		e.logf(task, "document URL not found")
		return Result{Task: task, Status: StatusNotFound}
	}
	e.logf(task, "resolved %s", resolved)

	// fetching
	temp := task.tempPath()
	if err := e.fetcher.Fetch(ctx, resolved, temp); err != nil {
		// The fetcher removes its own partial file; remove again in case
		// a stale temp from an interrupted earlier run is sitting there.
		os.Remove(temp)
		e.logf(task, "download failed: %v", err)
		return Result{Task: task, Status: StatusFetchFailed, Err: err}
	}

	finalName := task.Item
	if col.Mode() == config.ModeTitle {
		if title, ok := e.title(temp); ok {
			finalName = title
		} else {
			e.logf(task, "no title found, using item as filename")
		}
	}
	finalPath := filepath.Join(col.Folder, finalName+".pdf")

	// comparing
	if _, err := os.Stat(finalPath); os.IsNotExist(err) {
		// first-write
		if err := os.Rename(temp, finalPath); err != nil {
			os.Remove(temp)
			e.logf(task, "write failed: %v", err)
			return Result{Task: task, Status: StatusWriteFailed, Err: err}
		}
		e.logf(task, "downloaded")
		return Result{Task: task, Status: StatusDownloaded, FinalPath: finalPath}
	} else if err != nil {
		os.Remove(temp)
		e.logf(task, "write failed: %v", err)
		return Result{Task: task, Status: StatusWriteFailed, Err: err}
	}

	oldSum, err := Checksum(finalPath)
	if err != nil {
		os.Remove(temp)
		e.logf(task, "write failed: %v", err)
		return Result{Task: task, Status: StatusWriteFailed, Err: err}
	}
	newSum, err := Checksum(temp)
	if err != nil {
		os.Remove(temp)
		e.logf(task, "write failed: %v", err)
		return Result{Task: task, Status: StatusWriteFailed, Err: err}
	}

	if oldSum == newSum {
		// no-op
		if err := os.Remove(temp); err != nil {
			e.logf(task, "write failed: %v", err)
			return Result{Task: task, Status: StatusWriteFailed, Err: err}
		}
		e.logf(task, "up to date")
		return Result{Task: task, Status: StatusUpToDate, FinalPath: finalPath}
	}

	// replacing: archive the displaced version, then swap the new one in.
	// A completed archive move is not rolled back if the swap then fails;
	// the archived copy is the best-effort boundary.
	archived := filepath.Join(col.Folder, ArchiveDirName,
		fmt.Sprintf("%s_%s.pdf", finalName, e.now().Format(archiveTimestampLayout)))
	if err := os.Rename(finalPath, archived); err != nil {
		os.Remove(temp)
		e.logf(task, "archive failed: %v", err)
		return Result{Task: task, Status: StatusArchiveFailed, Err: err}
	}
	if err := os.Rename(temp, finalPath); err != nil {
		os.Remove(temp)
		e.logf(task, "write failed: %v", err)
		return Result{Task: task, Status: StatusWriteFailed, Err: err}
	}

	e.logf(task, "updated, old version archived")
	return Result{Task: task, Status: StatusUpdated, FinalPath: finalPath}
}

// logf emits one status line in the "[collection] [item] message" form.
func (e *Engine) logf(task Task, format string, args ...any) {
	e.logger.Printf("[%s] [%s] %s", task.Collection.Name, task.Item,
		fmt.Sprintf(format, args...))
}
