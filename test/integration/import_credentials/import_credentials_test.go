package importcredstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/virtualxperience/n8nsync/internal/config"
	"github.com/virtualxperience/n8nsync/test/integration/shared"
)

const testAPIKey = "test-api-key"

// fakePublicAPI is an in-memory stand-in for the public /api/v1 surface:
// API-key auth, per-type credential schemas, and POST-only creation.
type fakePublicAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	schemas  map[string]string
	failPost bool
	Created  []map[string]json.RawMessage
}

func newFakePublicAPI(t *testing.T) *fakePublicAPI {
	t.Helper()
	f := &fakePublicAPI{schemas: map[string]string{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakePublicAPI) SetSchema(credType, schema string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemas[credType] = schema
}

func (f *fakePublicAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("X-N8N-API-KEY") != testAPIKey {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/credentials/schema/"):
		credType := strings.TrimPrefix(r.URL.Path, "/api/v1/credentials/schema/")
		schema, ok := f.schemas[credType]
		if !ok {
			http.Error(w, `{"message":"unknown type"}`, http.StatusNotFound)
			return
		}
		fmt.Fprint(w, schema)

	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/credentials":
		if f.failPost {
			http.Error(w, `{"message":"simulated failure"}`, http.StatusBadRequest)
			return
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Created = append(f.Created, body)
		fmt.Fprintf(w, `{"id":"fake-%d"}`, len(f.Created))

	default:
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}
}

func (f *fakePublicAPI) CreatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created)
}

// setupInput writes a decrypted credential array at the decrypt command's
// default output location under a fresh data root.
func setupInput(t *testing.T, entries string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "credentials")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "decrypted_credentials_for_import.json")
	if err := os.WriteFile(path, []byte(entries), 0600); err != nil {
		t.Fatal(err)
	}
	return root
}

func setupEnv(t *testing.T, baseURL string) {
	t.Helper()
	shared.ClearEnv(t)
	t.Setenv(config.EnvBaseURL, baseURL)
	t.Setenv(config.EnvAPIKey, testAPIKey)
}

func TestImportCredentials_CreatesThroughPublicAPI(t *testing.T) {
	api := newFakePublicAPI(t)
	api.SetSchema("smtp", `{
		"properties": {"user": {}, "password": {}, "port": {"default": 465}},
		"required": ["user", "password"]
	}`)
	setupEnv(t, api.Server.URL)
	root := setupInput(t, `[
		{"id":"c1","name":"SMTP account","type":"smtp",
		 "data":{"user":"admin","password":"hunter2","oauthTokenData":{"access_token":"x"}}}
	]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err != nil {
		t.Fatalf("Import failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "credential(s) into") {
		t.Errorf("Output missing summary: %s", output)
	}

	if api.CreatedCount() != 1 {
		t.Fatalf("Created = %d, want 1", api.CreatedCount())
	}
	created := api.Created[0]
	if string(created["name"]) != `"SMTP account"` {
		t.Errorf("name = %s", created["name"])
	}
	if _, ok := created["id"]; ok {
		t.Error("local id leaked into the create payload")
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(created["data"], &data); err != nil {
		t.Fatalf("data is not an object: %v", err)
	}
	if _, ok := data["oauthTokenData"]; ok {
		t.Error("field outside the schema survived sanitization")
	}
	if string(data["port"]) != "465" {
		t.Errorf("port = %s, want the schema default filled in", data["port"])
	}
}

func TestImportCredentials_SkipsMissingRequired(t *testing.T) {
	api := newFakePublicAPI(t)
	api.SetSchema("smtp", `{"properties": {"user": {}, "password": {}}, "required": ["user", "password"]}`)
	setupEnv(t, api.Server.URL)
	root := setupInput(t, `[{"name":"Half empty","type":"smtp","data":{"user":"admin"}}]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err != nil {
		t.Fatalf("A skipped credential should not fail the run: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Skipped") {
		t.Errorf("Output missing skip listing: %s", output)
	}
	if api.CreatedCount() != 0 {
		t.Errorf("Created = %d, want 0", api.CreatedCount())
	}
}

func TestImportCredentials_UnknownSchemaImportsAsIs(t *testing.T) {
	api := newFakePublicAPI(t)
	setupEnv(t, api.Server.URL)
	root := setupInput(t, `[{"name":"Custom","type":"myCustomApi","data":{"token":"abc"}}]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err != nil {
		t.Fatalf("Import failed: %v\nOutput: %s", err, output)
	}
	if api.CreatedCount() != 1 {
		t.Fatalf("Created = %d, want 1", api.CreatedCount())
	}
	var data map[string]string
	if err := json.Unmarshal(api.Created[0]["data"], &data); err != nil {
		t.Fatal(err)
	}
	if data["token"] != "abc" {
		t.Errorf("data = %v, want the original fields untouched", data)
	}
}

func TestImportCredentials_DryRunPostsNothing(t *testing.T) {
	api := newFakePublicAPI(t)
	api.SetSchema("smtp", `{"properties": {"user": {}}, "required": ["user"]}`)
	setupEnv(t, api.Server.URL)
	root := setupInput(t, `[{"name":"SMTP account","type":"smtp","data":{"user":"admin"}}]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root, "--dry-run"}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err != nil {
		t.Fatalf("Dry run failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Would import") {
		t.Errorf("Output missing dry-run summary: %s", output)
	}
	if api.CreatedCount() != 0 {
		t.Errorf("Created = %d, want 0 on a dry run", api.CreatedCount())
	}
}

func TestImportCredentials_RequiresAPIKey(t *testing.T) {
	api := newFakePublicAPI(t)
	shared.ClearEnv(t)
	t.Setenv(config.EnvBaseURL, api.Server.URL)
	root := setupInput(t, `[]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err == nil {
		t.Fatalf("Expected an error without the API key\nOutput: %s", output)
	}
	if !strings.Contains(output, "N8N_API_KEY") {
		t.Errorf("Output missing key hint: %s", output)
	}
}

func TestImportCredentials_FailedCreateReportsError(t *testing.T) {
	api := newFakePublicAPI(t)
	api.failPost = true
	setupEnv(t, api.Server.URL)
	root := setupInput(t, `[{"name":"Broken","type":"myCustomApi","data":{"a":"b"}}]`)

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err == nil {
		t.Fatalf("Expected an error for the rejected credential\nOutput: %s", output)
	}
	if !strings.Contains(output, "Failed to import") {
		t.Errorf("Output missing failure listing: %s", output)
	}
}

func TestImportCredentials_MissingInputHintsDecrypt(t *testing.T) {
	api := newFakePublicAPI(t)
	setupEnv(t, api.Server.URL)
	root := t.TempDir()

	output, err := shared.CaptureOutput(func() error {
		testCmd := shared.CreateTestCLI("import-credentials", []string{"--root", root}, nil, nil, false, false)
		return testCmd.Execute()
	})
	if err == nil {
		t.Fatalf("Expected an error for the missing input file\nOutput: %s", output)
	}
	if !strings.Contains(output, "decrypt") {
		t.Errorf("Output missing pointer to the decrypt step: %s", output)
	}
}
