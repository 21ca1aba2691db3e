// Package mirror keeps local copies of remotely hosted PDF documents in
// sync with their source, archiving superseded versions.
//
// # Overview
//
// The package implements the per-document synchronization pipeline and the
// concurrent orchestration that runs it across many documents:
//
//	Collections (config)
//	     ↓
//	Orchestrator ── worker pool ──→ Engine (one task at a time)
//	                                   ├── Resolver  (identifier → URL)
//	                                   ├── Fetcher   (URL → temp file)
//	                                   ├── Checksum  (staleness check)
//	                                   └── TitleFunc (optional naming)
//	                                   ↓
//	                              storage folder
//	                                   ├── <name>.pdf
//	                                   ├── <item>_new.pdf   (transient)
//	                                   └── archive/<name>_<ts>.pdf
//
// # Usage
//
// Basic usage:
//
//	engine := mirror.NewEngine(nil)
//	orch := mirror.NewOrchestrator(engine, nil)
//	summary := orch.Run(ctx, cfg.Collections())
//
// # Guarantees
//
// For each task the engine guarantees:
//
//   - at most one final document per derived name exists at any time
//   - an existing document is archived before it is replaced; differing
//     content is never silently discarded
//   - byte-identical incoming content produces no write and no archive
//   - the task's temp file never survives its terminal state
//
// # Error handling
//
// The pipeline is resilient to individual task failures:
//
//   - resolve, fetch, and filesystem errors become a per-task failed
//     result, never an aborted run
//   - title extraction failures degrade to identifier naming and are not
//     counted as task failures
//   - completion order across tasks is arbitrary; no ordering is provided
//     or required between tasks
package mirror
