package mirror

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/droopymiller/yoink/internal/config"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 4

// Summary aggregates the terminal states of one run.
type Summary struct {
	Downloaded int
	Updated    int
	UpToDate   int
	NotFound   int
	Failed     int // fetch, write, and archive failures
}

// Total returns the number of tasks that reached a terminal state.
func (s Summary) Total() int {
	return s.Downloaded + s.Updated + s.UpToDate + s.NotFound + s.Failed
}

// add folds one result into the summary.
func (s *Summary) add(r Result) {
	switch r.Status {
	case StatusDownloaded:
		s.Downloaded++
	case StatusUpdated:
		s.Updated++
	case StatusUpToDate:
		s.UpToDate++
	case StatusNotFound:
		s.NotFound++
	default:
		s.Failed++
	}
}

// String returns the end-of-run summary line.
func (s Summary) String() string {
	return fmt.Sprintf("processed=%d downloaded=%d updated=%d up-to-date=%d not-found=%d failed=%d",
		s.Total(), s.Downloaded, s.Updated, s.UpToDate, s.NotFound, s.Failed)
}

// OrchestratorConfig holds orchestrator options. Zero-value fields get
// working defaults from NewOrchestrator.
type OrchestratorConfig struct {
	// Workers is the fixed worker pool size.
	Workers int

	// Logger for run-level lines (folder preparation, summary).
	Logger *log.Logger

	// OnResult, if set, is called for every task result as it completes.
	// Completion order is arbitrary. Called from the collecting
	// goroutine, never concurrently with itself.
	OnResult func(Result)
}

// Orchestrator fans one Engine.Sync invocation per (collection, item) pair
// out over a bounded worker pool and collects results as they complete.
// One task's failure never cancels or blocks the others.
type Orchestrator struct {
	engine   *Engine
	workers  int
	logger   *log.Logger
	onResult func(Result)
}

// NewOrchestrator creates an orchestrator running tasks on engine.
func NewOrchestrator(engine *Engine, cfg *OrchestratorConfig) *Orchestrator {
	if cfg == nil {
		cfg = &OrchestratorConfig{}
	}
	o := &Orchestrator{
		engine:   engine,
		workers:  cfg.Workers,
		logger:   cfg.Logger,
		onResult: cfg.OnResult,
	}
	if o.workers <= 0 {
		o.workers = DefaultWorkers
	}
	if o.logger == nil {
		o.logger = log.New(os.Stderr, "[mirror] ", log.LstdFlags)
	}
	return o
}

// Run syncs every item of every collection and returns the aggregate
// summary. Folders are prepared once per collection, not once per task.
// Task failures are folded into the summary and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, collections []*config.Collection) Summary {
	var tasks []Task
	var summary Summary

	for _, col := range collections {
		if err := prepareFolders(col.Folder); err != nil {
			// Every item of this collection fails; other collections
			// still run.
			o.logger.Printf("[%s] failed to prepare folders: %v", col.Name, err)
			for _, item := range col.Items {
				r := Result{
					Task:   Task{Collection: col, Item: item},
					Status: StatusWriteFailed,
					Err:    err,
				}
				summary.add(r)
				if o.onResult != nil {
					o.onResult(r)
				}
			}
			continue
		}
		for _, item := range col.Items {
			tasks = append(tasks, Task{Collection: col, Item: item})
		}
	}

	queue := make(chan Task)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				results <- o.engine.Sync(ctx, task)
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			queue <- task
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	for r := range results {
		summary.add(r)
		if o.onResult != nil {
			o.onResult(r)
		}
	}

	o.logger.Printf("run complete: %s", summary)
	return summary
}

// prepareFolders ensures the storage folder and its archive subfolder
// exist.
func prepareFolders(folder string) error {
	if err := os.MkdirAll(filepath.Join(folder, ArchiveDirName), 0755); err != nil {
		return fmt.Errorf("failed to create folders: %w", err)
	}
	return nil
}
