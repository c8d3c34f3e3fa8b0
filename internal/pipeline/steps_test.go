package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/wisdl/internal/config"
	"github.com/nao1215/wisdl/internal/credential"
	"github.com/nao1215/wisdl/internal/database"
	"github.com/nao1215/wisdl/internal/model"
	"github.com/nao1215/wisdl/internal/output"
	"github.com/spf13/afero"
)

const (
	testUser     = "xlogin00"
	testPassword = "correct-horse"
	testRoot     = "/home/x/wis_projects"
)

// fakeWIS serves a small portal: study 1 holds IZP with one task and two
// files, study 2 has no courses.
type fakeWIS struct {
	mu       sync.Mutex
	requests []string
	pages    map[string]string
	status   map[string]int
}

func newFakeWIS() *fakeWIS {
	return &fakeWIS{
		pages: map[string]string{
			"/FIT/st/study-s.php.cs":        `<html><body>studies</body></html>`,
			"/FIT/st/study-a.php.cs?cist=1": `<div class="content"><div class="table-holder"><table><tr align="center" valign="top"><th>IZP</th><td><a class="bar" href="izp">x</a></td></tr></table></div></div>`,
			"/FIT/st/study-a.php.cs?cist=2": `<div class="content"><div class="table-holder"><table></table></div></div>`,
			"/FIT/st/izp":                   `<div class="content"><form><div class="table-holder"><table><tr><td><a class="bar" href="izp-p1">Projekt 1</a></td></tr></table></div></form></div>`,
			"/FIT/st/izp-p1":                `<div class="content"><p><a href="course-sf.php.cs?id=1">files</a></p></div>`,
			"/FIT/st/course-sf.php.cs?id=1": `<div class="content"><h1>Soubory / 2023</h1><form><table><tr valign="middle"><td><a href="file-1">main.zip</a></td></tr><tr valign="middle"><td><a href="file-2">readme.txt</a></td></tr></table></form></div>`,
			"/FIT/st/file-1":                "zip-bytes",
			"/FIT/st/file-2":                "hello",
		},
		status: map[string]int{},
	}
}

func (f *fakeWIS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	f.mu.Lock()
	f.requests = append(f.requests, key)
	status, forced := f.status[key]
	page, ok := f.pages[key]
	f.mu.Unlock()

	user, pass, _ := r.BasicAuth()
	switch {
	case user != testUser || pass != testPassword:
		w.WriteHeader(http.StatusUnauthorized)
	case forced:
		w.WriteHeader(status)
	case !ok:
		http.NotFound(w, r)
	default:
		w.Write([]byte(page)) //nolint:errcheck
	}
}

func (f *fakeWIS) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == key {
			n++
		}
	}
	return n
}

func (f *fakeWIS) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// passwords returns a provider answering attempt n with passwords[n-1].
func passwords(calls *int, list ...string) credential.Provider {
	return credential.ProviderFunc(func(_ context.Context, attempt int) (model.Credentials, error) {
		*calls++
		if attempt > len(list) {
			return model.Credentials{}, credential.ErrAborted
		}
		return model.Credentials{Username: testUser, Password: list[attempt-1]}, nil
	})
}

func newTestConfig(baseURL string) *config.Config {
	cfg := config.NewConfig()
	cfg.BaseURL = baseURL
	cfg.OutputDir = testRoot
	cfg.SaveHistory = false
	return cfg
}

// TestConnectStep tests login and the re-prompt on rejected credentials.
func TestConnectStep(t *testing.T) {
	t.Parallel()

	t.Run("asks again after rejected credentials", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		srv := httptest.NewServer(wis)
		defer srv.Close()

		var calls int
		run := &Run{
			Config:   newTestConfig(srv.URL),
			FS:       afero.NewMemMapFs(),
			Provider: passwords(&calls, "wrong-password", testPassword),
		}
		defer run.Close()

		if err := NewConnectStep(quietLogger()).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 provider calls, got %d", calls)
		}
		if got := wis.count("/FIT/st/study-s.php.cs"); got != 2 {
			t.Errorf("expected 2 probes, got %d", got)
		}
		if run.Session == nil || run.Session.Username() != testUser {
			t.Error("expected connected session")
		}
	})

	t.Run("provider error is a connection failure", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		srv := httptest.NewServer(wis)
		defer srv.Close()

		var calls int
		run := &Run{
			Config:   newTestConfig(srv.URL),
			FS:       afero.NewMemMapFs(),
			Provider: passwords(&calls, "wrong-password"),
		}

		err := NewConnectStep(quietLogger()).Do(context.Background(), run)
		if !errors.Is(err, ErrConnect) || !errors.Is(err, credential.ErrAborted) {
			t.Errorf("expected ErrConnect wrapping ErrAborted, got %v", err)
		}
		if ExitCode(err) != ExitConnection {
			t.Errorf("expected exit code %d, got %d", ExitConnection, ExitCode(err))
		}
		if run.Session != nil {
			t.Error("expected no session")
		}
	})

	t.Run("server error is not retried", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		wis.status["/FIT/st/study-s.php.cs"] = http.StatusServiceUnavailable
		srv := httptest.NewServer(wis)
		defer srv.Close()

		var calls int
		run := &Run{
			Config:   newTestConfig(srv.URL),
			FS:       afero.NewMemMapFs(),
			Provider: passwords(&calls, testPassword, testPassword),
		}

		err := NewConnectStep(quietLogger()).Do(context.Background(), run)
		if ExitCode(err) != ExitConnection {
			t.Errorf("expected exit code %d, got %d (%v)", ExitConnection, ExitCode(err), err)
		}
		if calls != 1 {
			t.Errorf("expected 1 provider call, got %d", calls)
		}
	})
}

// TestOutputSteps tests the output root checks.
func TestOutputSteps(t *testing.T) {
	t.Parallel()

	t.Run("existing root is rejected", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := fs.MkdirAll(testRoot, 0o755); err != nil {
			t.Fatal(err)
		}
		run := &Run{Config: newTestConfig("http://127.0.0.1"), FS: fs}

		err := NewCheckOutputStep().Do(context.Background(), run)
		if !errors.Is(err, output.ErrRootExists) {
			t.Errorf("expected ErrRootExists, got %v", err)
		}
		if ExitCode(err) != ExitFailure {
			t.Errorf("expected exit code %d, got %d", ExitFailure, ExitCode(err))
		}
	})

	t.Run("root is created", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		if err := fs.MkdirAll(filepath.Dir(testRoot), 0o755); err != nil {
			t.Fatal(err)
		}
		run := &Run{Config: newTestConfig("http://127.0.0.1"), FS: fs}

		if err := NewCheckOutputStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := NewPrepareOutputStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok, _ := afero.DirExists(fs, testRoot); !ok {
			t.Error("expected root to exist")
		}
	})
}

// TestDownloadPipeline runs the standard pipeline against a fake portal.
func TestDownloadPipeline(t *testing.T) {
	t.Parallel()

	t.Run("downloads every file and writes a report", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		srv := httptest.NewServer(wis)
		defer srv.Close()

		var calls int
		var out bytes.Buffer
		fs := afero.NewMemMapFs()
		cfg := newTestConfig(srv.URL)
		cfg.ReportFormat = config.ReportFormatText

		run := &Run{Config: cfg, FS: fs, Provider: passwords(&calls, testPassword), Out: &out}
		if err := NewDownload(quietLogger()).Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for path, want := range map[string]string{
			testRoot + "/IZP/Projekt 1/2023/main.zip":   "zip-bytes",
			testRoot + "/IZP/Projekt 1/2023/readme.txt": "hello",
		} {
			got, err := afero.ReadFile(fs, path)
			if err != nil {
				t.Errorf("expected %s: %v", path, err)
				continue
			}
			if string(got) != want {
				t.Errorf("%s: expected %q, got %q", path, want, got)
			}
		}

		if run.Summary == nil || len(run.Summary.Files) != 2 {
			t.Fatalf("expected 2 files in summary, got %+v", run.Summary)
		}
		if run.Summary.Username != testUser || run.Summary.OutputDir != testRoot {
			t.Errorf("unexpected summary identity: %q %q", run.Summary.Username, run.Summary.OutputDir)
		}
		if wis.count("/FIT/st/study-a.php.cs?cist=3") != 0 {
			t.Error("expected walk to stop at the empty study")
		}
		if !strings.Contains(out.String(), "[study 1] IZP: 2 file(s)") {
			t.Errorf("expected text report, got:\n%s", out.String())
		}
	})

	t.Run("existing root makes no request", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		srv := httptest.NewServer(wis)
		defer srv.Close()

		fs := afero.NewMemMapFs()
		if err := fs.MkdirAll(testRoot, 0o755); err != nil {
			t.Fatal(err)
		}

		var calls int
		run := &Run{Config: newTestConfig(srv.URL), FS: fs, Provider: passwords(&calls, testPassword)}
		err := NewDownload(quietLogger()).Execute(context.Background(), run)
		if ExitCode(err) != ExitFailure {
			t.Errorf("expected exit code %d, got %d", ExitFailure, ExitCode(err))
		}
		if calls != 0 || wis.total() != 0 {
			t.Errorf("expected no credentials or requests, got %d calls and %d requests", calls, wis.total())
		}
	})

	t.Run("failed download is recorded", func(t *testing.T) {
		t.Parallel()

		wis := newFakeWIS()
		wis.status["/FIT/st/file-2"] = http.StatusInternalServerError
		srv := httptest.NewServer(wis)
		defer srv.Close()

		cfg := newTestConfig(srv.URL)
		cfg.SaveHistory = true
		cfg.DBDir = t.TempDir()

		var calls int
		fs := afero.NewMemMapFs()
		run := &Run{Config: cfg, FS: fs, Provider: passwords(&calls, testPassword)}

		err := NewDownload(quietLogger()).Execute(context.Background(), run)
		if err == nil || ExitCode(err) != ExitFailure {
			t.Fatalf("expected crawl failure with exit code %d, got %v", ExitFailure, err)
		}
		if run.Summary == nil || !run.Summary.Failed() || len(run.Summary.Files) != 1 {
			t.Fatalf("expected failed summary with 1 file, got %+v", run.Summary)
		}
		if run.RunID == 0 {
			t.Fatal("expected run to be recorded")
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		rec, err := db.GetRun(context.Background(), run.RunID)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Status != database.RunFailed || rec.Files != 1 {
			t.Errorf("expected failed run with 1 file, got %+v", rec)
		}
	})
}

// TestReportStep tests report destinations.
func TestReportStep(t *testing.T) {
	t.Parallel()

	t.Run("no report by default", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		run := &Run{Config: config.NewConfig(), FS: afero.NewMemMapFs(), Out: &out, Summary: model.NewRunSummary("/out")}
		if err := NewReportStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected no output, got %q", out.String())
		}
	})

	t.Run("writes to report file", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		cfg := config.NewConfig()
		cfg.ReportFormat = config.ReportFormatJSON
		cfg.ReportFile = "/report.json"

		run := &Run{Config: cfg, FS: fs, Summary: model.NewRunSummary("/out")}
		if err := NewReportStep().Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := afero.ReadFile(fs, "/report.json")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"status": "completed"`) {
			t.Errorf("unexpected report: %s", data)
		}
	})
}
