package mirror

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/droopymiller/yoink/internal/config"
)

// newMirrorServer serves a search endpoint plus the documents it redirects
// to. Content per item lives in docs; items absent from docs resolve to
// nothing.
func newMirrorServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		item := r.URL.Query().Get("q")
		if _, ok := docs[item]; !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/docs/"+item+".pdf", http.StatusFound)
	})
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		item := filepath.Base(r.URL.Path)
		item = item[:len(item)-len(".pdf")]
		content, ok := docs[item]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newHTTPEngine builds an engine with real HTTP components against srv.
func newHTTPEngine(srv *httptest.Server) *Engine {
	return NewEngine(&EngineConfig{
		Resolver: NewHTTPResolver(srv.Client()),
		Fetcher:  NewHTTPFetcher(srv.Client()),
		Logger:   quiet,
		Now:      steppingClock(),
	})
}

func TestRunMixedOutcomes(t *testing.T) {
	srv := newMirrorServer(t, map[string]string{
		"ABC123": "abc content",
		"XYZ789": "xyz content",
		"AN-100": "an content",
	})

	parts := &config.Collection{
		Name:    "parts",
		Folder:  filepath.Join(t.TempDir(), "parts"),
		BaseURL: srv.URL + "/search?q=",
		Items:   []string{"ABC123", "XYZ789", "MISSING"},
	}
	appnotes := &config.Collection{
		Name:    "appnotes",
		Folder:  filepath.Join(t.TempDir(), "appnotes"),
		BaseURL: srv.URL + "/search?q=",
		Items:   []string{"AN-100"},
	}

	var mu sync.Mutex
	var results []Result
	orch := NewOrchestrator(newHTTPEngine(srv), &OrchestratorConfig{
		Workers: 3,
		Logger:  quiet,
		OnResult: func(r Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		},
	})

	summary := orch.Run(context.Background(), []*config.Collection{parts, appnotes})

	if summary.Total() != 4 {
		t.Errorf("total = %d, want 4", summary.Total())
	}
	if summary.Downloaded != 3 {
		t.Errorf("downloaded = %d, want 3", summary.Downloaded)
	}
	if summary.NotFound != 1 {
		t.Errorf("not-found = %d, want 1", summary.NotFound)
	}
	if summary.Failed != 0 {
		t.Errorf("failed = %d, want 0", summary.Failed)
	}
	if len(results) != 4 {
		t.Errorf("OnResult called %d times, want 4", len(results))
	}

	// Folders (and archive subfolders) were prepared per collection.
	for _, col := range []*config.Collection{parts, appnotes} {
		if fi, err := os.Stat(filepath.Join(col.Folder, ArchiveDirName)); err != nil || !fi.IsDir() {
			t.Errorf("[%s] archive folder not prepared", col.Name)
		}
	}

	for _, want := range []string{"ABC123", "XYZ789"} {
		if _, err := os.Stat(filepath.Join(parts.Folder, want+".pdf")); err != nil {
			t.Errorf("missing document %s.pdf: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(appnotes.Folder, "AN-100.pdf")); err != nil {
		t.Errorf("missing document AN-100.pdf: %v", err)
	}
}

func TestRunSecondPassIsNoOp(t *testing.T) {
	srv := newMirrorServer(t, map[string]string{"ABC123": "stable content"})
	col := &config.Collection{
		Name:    "parts",
		Folder:  filepath.Join(t.TempDir(), "parts"),
		BaseURL: srv.URL + "/search?q=",
		Items:   []string{"ABC123"},
	}

	orch := NewOrchestrator(newHTTPEngine(srv), &OrchestratorConfig{Workers: 2, Logger: quiet})

	first := orch.Run(context.Background(), []*config.Collection{col})
	if first.Downloaded != 1 {
		t.Fatalf("first run downloaded = %d, want 1", first.Downloaded)
	}

	second := orch.Run(context.Background(), []*config.Collection{col})
	if second.UpToDate != 1 {
		t.Errorf("second run up-to-date = %d, want 1", second.UpToDate)
	}

	entries, err := os.ReadDir(filepath.Join(col.Folder, ArchiveDirName))
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("archive has %d entries after unchanged re-run, want 0", len(entries))
	}
}

func TestRunFailureIsolation(t *testing.T) {
	// One collection cannot even prepare its folder; the other must still
	// complete.
	srv := newMirrorServer(t, map[string]string{"ABC123": "content"})

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	broken := &config.Collection{
		Name:    "broken",
		Folder:  filepath.Join(blocker, "docs"),
		BaseURL: srv.URL + "/search?q=",
		Items:   []string{"A", "B"},
	}
	healthy := &config.Collection{
		Name:    "healthy",
		Folder:  filepath.Join(t.TempDir(), "docs"),
		BaseURL: srv.URL + "/search?q=",
		Items:   []string{"ABC123"},
	}

	orch := NewOrchestrator(newHTTPEngine(srv), &OrchestratorConfig{Workers: 2, Logger: quiet})
	summary := orch.Run(context.Background(), []*config.Collection{broken, healthy})

	if summary.Failed != 2 {
		t.Errorf("failed = %d, want 2 (both items of broken collection)", summary.Failed)
	}
	if summary.Downloaded != 1 {
		t.Errorf("downloaded = %d, want 1 (healthy collection unaffected)", summary.Downloaded)
	}
}

func TestRunManyItemsBoundedPool(t *testing.T) {
	docs := make(map[string]string)
	var items []string
	for i := 0; i < 40; i++ {
		item := fmt.Sprintf("PN-%03d", i)
		docs[item] = "content of " + item
		items = append(items, item)
	}
	srv := newMirrorServer(t, docs)

	col := &config.Collection{
		Name:    "parts",
		Folder:  filepath.Join(t.TempDir(), "parts"),
		BaseURL: srv.URL + "/search?q=",
		Items:   items,
	}

	orch := NewOrchestrator(newHTTPEngine(srv), &OrchestratorConfig{Workers: 4, Logger: quiet})
	summary := orch.Run(context.Background(), []*config.Collection{col})

	if summary.Downloaded != len(items) {
		t.Errorf("downloaded = %d, want %d", summary.Downloaded, len(items))
	}
	for _, item := range items {
		if _, err := os.Stat(filepath.Join(col.Folder, item+".pdf")); err != nil {
			t.Errorf("missing %s.pdf", item)
		}
	}
}
