// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for building test CLI instances,
// capturing output, and running a fake n8n instance to sync against.
package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/cmd"
	"github.com/virtualxperience/n8nsync/internal/config"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
)

// TestUser and TestPassword are the basic auth credentials every fake
// instance accepts.
const (
	TestUser     = "testuser"
	TestPassword = "testpassword"
)

// ClearEnv blanks every environment variable the CLI reads, so ambient
// settings on the machine running the tests cannot leak in.
func ClearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvBaseURL, config.EnvWebhookURL, config.EnvUser, config.EnvPassword,
		config.EnvEncryptionKey, config.EnvAPIKey, config.EnvSkipWorkflows, config.EnvSkipCredentials,
	} {
		t.Setenv(key, "")
	}
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stdoutReader)
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stderrReader)
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// CreateTestCLI creates a complete CLI instance for testing, running the
// given data subcommand with the provided extra arguments.
func CreateTestCLI(subcommand string, args []string, stdout, stderr io.Writer, verboseFlag, debugFlag bool) *cobra.Command {
	cmd.ResetGlobalState()

	cmd.SetLogger(logger.Logger{
		Verbose: verboseFlag,
		Debug:   debugFlag,
	})

	rootCmd := &cobra.Command{
		Use:   "n8nsync",
		Short: "n8nsync - Synchronize n8n workflow and credential data with a repository.",
	}
	rootCmd.AddCommand(cmd.GetDataCmd())

	if stdout != nil {
		rootCmd.SetOut(stdout)
		cmd.GetDataCmd().SetOut(stdout)
		for _, subcmd := range cmd.GetDataCmd().Commands() {
			subcmd.SetOut(stdout)
		}
	}
	if stderr != nil {
		rootCmd.SetErr(stderr)
		cmd.GetDataCmd().SetErr(stderr)
		for _, subcmd := range cmd.GetDataCmd().Commands() {
			subcmd.SetErr(stderr)
		}
	}

	cliArgs := append([]string{"data", subcommand}, args...)
	if verboseFlag {
		cliArgs = append(cliArgs, "--verbose")
	}
	if debugFlag {
		cliArgs = append(cliArgs, "--debug")
	}
	rootCmd.SetArgs(cliArgs)

	return rootCmd
}

// FakeInstance is an in-memory n8n lookalike backed by httptest. Stores are
// exposed so tests can seed remote state and assert on mutations.
type FakeInstance struct {
	Server *httptest.Server

	mu         sync.Mutex
	stores     map[string]map[string]json.RawMessage
	nextID     int
	notReady   int // health probes to fail before turning healthy
	failUpdate map[string]int
	Creates    int
	Updates    int
}

// NewFakeInstance starts a fake n8n server. The caller owns shutdown via
// t.Cleanup registered here.
func NewFakeInstance(t *testing.T) *FakeInstance {
	t.Helper()
	f := &FakeInstance{
		stores: map[string]map[string]json.RawMessage{
			"workflows":   {},
			"credentials": {},
		},
		failUpdate: map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake instance.
func (f *FakeInstance) URL() string {
	return f.Server.URL
}

// Seed places a record into the fake's remote store directly.
func (f *FakeInstance) Seed(collection, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores[collection][id] = json.RawMessage(fmt.Sprintf(`{"id":%q,"name":%q}`, id, name))
}

// Record returns the stored body for one id, or nil.
func (f *FakeInstance) Record(collection, id string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores[collection][id]
}

// Count returns the number of records in one collection.
func (f *FakeInstance) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stores[collection])
}

// SetNotReady makes the next n health probes fail with a 503.
func (f *FakeInstance) SetNotReady(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notReady = n
}

// FailUpdates makes the next n updates of the given id fail with a 500.
func (f *FakeInstance) FailUpdates(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate[id] = n
}

func (f *FakeInstance) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/healthz" {
		if f.notReady > 0 {
			f.notReady--
			http.Error(w, `{"status":"starting"}`, http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"status":"ok"}`)
		return
	}

	user, pass, ok := r.BasicAuth()
	if !ok || user != TestUser || pass != TestPassword {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rest/"), "/")
	store, exists := f.stores[parts[0]]
	if !exists || !strings.HasPrefix(r.URL.Path, "/rest/") {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		ids := make([]string, 0, len(store))
		for id := range store {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		list := make([]json.RawMessage, 0, len(ids))
		for _, id := range ids {
			list = append(list, store[id])
		}
		writeData(w, list)

	case len(parts) == 1 && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(body, &rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nextID++
		id := fmt.Sprintf("fake-%d", f.nextID)
		rec["id"] = json.RawMessage(fmt.Sprintf("%q", id))
		stored, _ := json.Marshal(rec)
		store[id] = stored
		f.Creates++
		writeData(w, json.RawMessage(stored))

	case len(parts) == 2 && r.Method == http.MethodGet:
		body, exists := store[parts[1]]
		if !exists {
			http.NotFound(w, r)
			return
		}
		writeData(w, body)

	case len(parts) == 2 && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		id := parts[1]
		if f.failUpdate[id] > 0 {
			f.failUpdate[id]--
			http.Error(w, "simulated failure", http.StatusInternalServerError)
			return
		}
		if _, exists := store[id]; !exists {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		store[id] = body
		f.Updates++
		writeData(w, json.RawMessage(body))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}
