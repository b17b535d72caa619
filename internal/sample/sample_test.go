package sample

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/engine/workbook"
	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/retry"
	"github.com/Iron-Ham/sheetview/internal/testutil"
)

type memMarker struct{ loaded, marks int }

func (m *memMarker) SampleLoaded() bool { return m.loaded > 0 }
func (m *memMarker) MarkSampleLoaded()  { m.loaded++; m.marks++ }

var fastLoad = retry.Policy{MaxAttempts: 3, Interval: time.Millisecond}

func TestLoader_CandidateOrder(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string]string{
		"/srv/data/sample.s2v": "second",
		"/srv/docs/sample.s2v": "third",
	})
	l := NewLoader(fs, []string{"/srv/missing.s2v", "/srv/data/sample.s2v", "/srv/docs/sample.s2v"})

	text, source, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "second" || source != "/srv/data/sample.s2v" {
		t.Errorf("Fetch() = %q from %q, want the first readable candidate", text, source)
	}
}

func TestLoader_AllUnavailable(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs(), []string{"./data/sample.s2v", "builtin:nope.s2v"})

	_, _, err := l.Fetch(context.Background())
	if !errors.Is(err, errors.ErrSampleUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrSampleUnavailable", err)
	}
	if got := errors.StatusText(err, "x"); got != UnavailableMessage+": "+errors.ErrSampleUnavailable.Error() {
		t.Errorf("StatusText() = %q", got)
	}
}

func TestLoader_Builtin(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"})
	text, source, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if source != "builtin:sample.s2v" || !strings.HasPrefix(text, "Item;") {
		t.Errorf("Fetch() = %q from %q", text, source)
	}
	if Builtin() != text {
		t.Error("Builtin() should return the embedded document")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.s2v":
			_, _ = w.Write([]byte("remote;1"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(afero.NewMemMapFs(), []string{srv.URL + "/missing.s2v", srv.URL + "/ok.s2v"},
		WithHTTPClient(srv.Client()))

	text, source, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "remote;1" || source != srv.URL+"/ok.s2v" {
		t.Errorf("Fetch() = %q from %q", text, source)
	}
}

func TestLoader_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(afero.NewMemMapFs(), nil, WithHTTPClient(srv.Client()))
	url := srv.URL + "/missing.s2v"
	_, err := l.fetchOne(context.Background(), url)

	var docErr *errors.DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("fetchOne() error = %v, want a DocumentError", err)
	}
	if docErr.Op != errors.OpSample || docErr.Path != url {
		t.Errorf("DocumentError = %+v", docErr)
	}
	if !errors.Is(err, errors.ErrSampleUnavailable) {
		t.Errorf("fetchOne() error = %v, want ErrSampleUnavailable", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q should name the status", err)
	}
}

func TestLoader_GlobExpansion(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string]string{
		"/srv/samples/b.s2v":   "b",
		"/srv/samples/a.s2v":   "a",
		"/srv/samples/c.txt":   "c",
		"/srv/samples/x/d.s2v": "d",
	})
	l := NewLoader(fs, []string{"/srv/samples/*.s2v", "/srv/none/*.s2v", "builtin:sample.s2v"})

	got := l.Candidates()
	want := []string{"/srv/samples/a.s2v", "/srv/samples/b.s2v", "builtin:sample.s2v"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestStaticPrefix(t *testing.T) {
	tests := map[string]string{
		"data/*.s2v":        "data",
		"*.s2v":             ".",
		"/a/b/**/c.s2v":     "/a/b",
		"/a/b/file[12].s2v": "/a/b",
		"/a/plain.s2v":      "/a",
	}
	for pattern, want := range tests {
		if got := staticPrefix(pattern); got != want {
			t.Errorf("staticPrefix(%q) = %q, want %q", pattern, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"builtin:sample.s2v":               "sample.s2v",
		"./docs/data/sample.s2v":           "sample.s2v",
		"https://example.com/x/book.s2v?v": "book.s2v",
		"":                                 "sample.s2v",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func newBootstrapController(t *testing.T) (*grid.Controller, *testutil.FakeEngine) {
	t.Helper()
	fake := testutil.NewFakeEngine()
	return grid.New(engine.NewBridge("fake", fake), nil, grid.WithLoadPolicy(fastLoad)), fake
}

func TestBootstrapper_FirstRun(t *testing.T) {
	c, fake := newBootstrapController(t)
	fs := testutil.NewMemFs(t, map[string]string{"/srv/sample.s2v": "a;b\nc;d"})
	marker := &memMarker{}
	b := NewBootstrapper(NewLoader(fs, []string{"/srv/sample.s2v"}), marker, true, nil)

	if err := b.Run(context.Background(), c); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.ResetCalls != 1 {
		t.Errorf("engine reset %d times, want 1", fake.ResetCalls)
	}
	if marker.marks != 1 {
		t.Errorf("marker set %d times, want 1", marker.marks)
	}
	if a, ok := c.Selected(); !ok || a != (grid.Address{Row: 1, Col: 1}) {
		t.Errorf("selection = %v, %v; want A1", a, ok)
	}
	if got := c.Surface().Cell(grid.Address{Row: 2, Col: 2}).Display; got != "d" {
		t.Errorf("B2 display = %q, want d", got)
	}
	if c.Notice() != "Loaded sample.s2v" {
		t.Errorf("Notice() = %q", c.Notice())
	}
}

func TestBootstrapper_MarkerSkipsSample(t *testing.T) {
	c, fake := newBootstrapController(t)
	marker := &memMarker{loaded: 1}
	b := NewBootstrapper(NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"}), marker, true, nil)

	if err := b.Run(context.Background(), c); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.ResetCalls != 1 || fake.LoadCalls != 0 {
		t.Errorf("reset=%d load=%d, want a reset without load", fake.ResetCalls, fake.LoadCalls)
	}
	if _, ok := c.Selected(); ok {
		t.Error("skipped sample should leave no selection")
	}
}

func TestBootstrapper_Disabled(t *testing.T) {
	c, fake := newBootstrapController(t)
	b := NewBootstrapper(NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"}), &memMarker{}, false, nil)
	if err := b.Run(context.Background(), c); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.LoadCalls != 0 {
		t.Error("disabled sample should not load")
	}
}

func TestBootstrapper_FetchFailure(t *testing.T) {
	c, _ := newBootstrapController(t)
	marker := &memMarker{}
	b := NewBootstrapper(NewLoader(afero.NewMemMapFs(), []string{"/nowhere.s2v"}), marker, true, nil)

	err := b.Run(context.Background(), c)
	if !errors.Is(err, errors.ErrSampleUnavailable) {
		t.Fatalf("Run() error = %v, want ErrSampleUnavailable", err)
	}
	if !strings.HasPrefix(c.Notice(), UnavailableMessage) {
		t.Errorf("Notice() = %q", c.Notice())
	}
	if marker.marks != 0 {
		t.Error("failed sample should not set the marker")
	}
	if _, ok := c.Selected(); ok {
		t.Error("view should stay empty")
	}
}

func TestBootstrapper_EngineUnavailable(t *testing.T) {
	c := grid.New(nil, nil)
	b := NewBootstrapper(NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"}), &memMarker{}, true, nil)

	if err := b.Run(context.Background(), c); !errors.Is(err, errors.ErrEngineUnavailable) {
		t.Errorf("Run() error = %v, want ErrEngineUnavailable", err)
	}
	if c.Status() != grid.NotReadyStatus {
		t.Errorf("Status() = %q", c.Status())
	}
}

func TestBootstrapper_BuiltinThroughWorkbook(t *testing.T) {
	eng := workbook.New(workbook.WithSyncLoad())
	defer eng.Close()
	c := grid.New(engine.NewBridge(workbook.Name, eng), nil, grid.WithLoadPolicy(fastLoad))
	b := NewBootstrapper(NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"}), &memMarker{}, true, nil)

	if err := b.Run(context.Background(), c); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := c.Surface().Cell(grid.Address{Row: 1, Col: 1}).Display; got != "Item" {
		t.Errorf("A1 display = %q, want Item", got)
	}
	if got := c.Surface().Cell(grid.Address{Row: 2, Col: 4}).Display; got != "2" {
		t.Errorf("D2 display = %q, want 2", got)
	}
}
