package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	"github.com/virtualxperience/n8nsync/internal/record"
)

// seedRoot writes a data root with the given files per kind subdirectory.
func seedRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestImportCreatesAndUpdates(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/abc-hello.json":   `{"id":"abc","name":"Hello"}`,
		"workflows/def-new.json":     `{"id":"def","name":"New"}`,
		"credentials/c1-secret.json": `{"id":"c1","name":"Secret"}`,
	})

	api := newFakeAPI()
	api.seed(record.KindWorkflow, "abc", "Hello")

	imp := &Importer{API: api, Log: quietLogger()}
	report, err := imp.Run(context.Background(), ImportOptions{Root: root})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Workflows.Created != 1 || report.Workflows.Updated != 1 {
		t.Errorf("workflows created=%d updated=%d, want 1/1",
			report.Workflows.Created, report.Workflows.Updated)
	}
	if report.Credentials.Created != 1 || report.Credentials.Updated != 0 {
		t.Errorf("credentials created=%d updated=%d, want 1/0",
			report.Credentials.Created, report.Credentials.Updated)
	}
	if report.TotalFailed() != 0 {
		t.Errorf("TotalFailed = %d, want 0", report.TotalFailed())
	}
}

func TestImportIsIdempotent(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/abc-hello.json": `{"id":"abc","name":"Hello"}`,
	})

	api := newFakeAPI()
	api.seed(record.KindWorkflow, "abc", "Hello")
	imp := &Importer{API: api, Log: quietLogger()}

	for run := 1; run <= 2; run++ {
		report, err := imp.Run(context.Background(), ImportOptions{Root: root})
		if err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}
		if report.Workflows.Created != 0 || report.Workflows.Updated != 1 {
			t.Errorf("run %d: created=%d updated=%d, want 0/1",
				run, report.Workflows.Created, report.Workflows.Updated)
		}
	}
	if len(api.stores[record.KindWorkflow]) != 1 {
		t.Errorf("remote holds %d workflows, want 1", len(api.stores[record.KindWorkflow]))
	}
}

func TestImportDryRunMutatesNothing(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/abc-hello.json": `{"id":"abc","name":"Hello"}`,
		"workflows/def-new.json":   `{"id":"def","name":"New"}`,
	})

	api := newFakeAPI()
	api.seed(record.KindWorkflow, "abc", "Hello")
	imp := &Importer{API: api, Log: quietLogger()}

	report, err := imp.Run(context.Background(), ImportOptions{Root: root, DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !report.DryRun {
		t.Error("report should be marked dry-run")
	}
	if api.mutations() != 0 {
		t.Errorf("dry-run issued %d mutating calls", api.mutations())
	}
	// The dry-run classifies against the real catalog, same path as a live run.
	if api.lists != 2 {
		t.Errorf("lists = %d, want 2 (one per kind)", api.lists)
	}
	if len(report.Workflows.Plan.ToCreate) != 1 || len(report.Workflows.Plan.ToUpdate) != 1 {
		t.Errorf("plan create=%d update=%d, want 1/1",
			len(report.Workflows.Plan.ToCreate), len(report.Workflows.Plan.ToUpdate))
	}
}

func TestImportThresholdAbortsBeforeMutation(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/abc-hello.json": `{"id":"abc","name":"Hello"}`,
	})

	api := newFakeAPI()
	imp := &Importer{API: api, Log: quietLogger()}

	report, err := imp.Run(context.Background(), ImportOptions{
		Root:       root,
		Thresholds: Thresholds{MinWorkflows: 10},
	})
	if !errors.Is(err, syncerrors.ErrThresholdNotMet) {
		t.Fatalf("Run = %v, want ErrThresholdNotMet", err)
	}
	if report == nil || !report.Aborted {
		t.Fatal("aborted run should still produce a report marked aborted")
	}
	if api.mutations() != 0 {
		t.Errorf("aborted run issued %d mutating calls", api.mutations())
	}
}

func TestImportContinuesPastRecordFailure(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/a-one.json":   `{"id":"a","name":"One"}`,
		"workflows/b-two.json":   `{"id":"b","name":"Two"}`,
		"workflows/c-three.json": `{"id":"c","name":"Three"}`,
	})

	api := newFakeAPI()
	api.seed(record.KindWorkflow, "a", "One")
	api.seed(record.KindWorkflow, "b", "Two")
	api.seed(record.KindWorkflow, "c", "Three")
	api.updateErr = func(id string) error {
		if id == "b" {
			return fmt.Errorf("boom")
		}
		return nil
	}

	imp := &Importer{API: api, Log: quietLogger()}
	report, err := imp.Run(context.Background(), ImportOptions{Root: root})
	if !errors.Is(err, syncerrors.ErrRecordsFailed) {
		t.Fatalf("Run = %v, want ErrRecordsFailed", err)
	}

	if report.Workflows.Updated != 2 {
		t.Errorf("Updated = %d, want 2 (batch continues past the failure)", report.Workflows.Updated)
	}
	if got := report.FailedLabels(); len(got) != 1 || got[0] != "b" {
		t.Errorf("FailedLabels = %v, want [b]", got)
	}
}

func TestImportExcludesMalformedFiles(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/a-good.json": `{"id":"a","name":"Good"}`,
		"workflows/b-bad.json":  `{{{`,
	})

	api := newFakeAPI()
	api.seed(record.KindWorkflow, "a", "Good")
	imp := &Importer{API: api, Log: quietLogger()}

	report, err := imp.Run(context.Background(), ImportOptions{Root: root})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Workflows.Updated != 1 {
		t.Errorf("Updated = %d, want 1", report.Workflows.Updated)
	}
	if report.TotalMalformed() != 1 {
		t.Errorf("TotalMalformed = %d, want 1", report.TotalMalformed())
	}
}

func TestImportSkipsKinds(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/a-one.json":       `{"id":"a","name":"One"}`,
		"credentials/c1-secret.json": `{"id":"c1","name":"Secret"}`,
	})

	api := newFakeAPI()
	imp := &Importer{API: api, Log: quietLogger()}

	report, err := imp.Run(context.Background(), ImportOptions{
		Root:            root,
		SkipCredentials: true,
		// A skipped kind must not trip its own threshold.
		Thresholds: Thresholds{MinCredentials: 5},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Credentials.Skipped || report.Credentials.Plan.Size() != 0 {
		t.Error("credentials should be skipped with an empty plan")
	}
	if report.Workflows.Created != 1 {
		t.Errorf("workflows Created = %d, want 1", report.Workflows.Created)
	}
	if len(api.stores[record.KindCredential]) != 0 {
		t.Error("skipped kind was mutated")
	}
}

func TestImportCatalogReadFailureIsFatal(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/a-one.json": `{"id":"a","name":"One"}`,
	})

	api := newFakeAPI()
	api.listErr = fmt.Errorf("catalog: %w", syncerrors.ErrRemoteUnavailable)
	imp := &Importer{API: api, Log: quietLogger()}

	report, err := imp.Run(context.Background(), ImportOptions{Root: root})
	if !errors.Is(err, syncerrors.ErrRemoteUnavailable) {
		t.Fatalf("Run = %v, want ErrRemoteUnavailable", err)
	}
	if report != nil {
		t.Error("a failed catalog read should not yield a report")
	}
	if api.mutations() != 0 {
		t.Errorf("failed catalog read issued %d mutating calls", api.mutations())
	}
}

func TestImportWaitsForReadiness(t *testing.T) {
	root := seedRoot(t, map[string]string{
		"workflows/a-one.json": `{"id":"a","name":"One"}`,
	})

	api := newFakeAPI()
	api.healthFailures = 2
	imp := &Importer{API: api, Log: quietLogger()}

	_, err := imp.Run(context.Background(), ImportOptions{
		Root:          root,
		WaitReady:     time.Second,
		ReadyInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if api.healthCalls != 3 {
		t.Errorf("healthCalls = %d, want 3", api.healthCalls)
	}
}
