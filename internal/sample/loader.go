// Package sample finds and fetches the demo document shown on first launch.
//
// Candidates are tried in order and the first readable one wins. A
// candidate is a local path, a glob pattern over local paths, an http(s)
// URL, or "builtin:<name>" for a document embedded in the binary.
package sample

import (
	"context"
	"embed"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/fileio"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// BuiltinPrefix marks candidates read from the embedded documents.
const BuiltinPrefix = "builtin:"

// DefaultName is the file name of the demo document.
const DefaultName = "sample.s2v"

// UnavailableMessage is shown when no candidate could be read.
const UnavailableMessage = "Failed to load sample.s2v (check path or server)"

// maxDocumentBytes caps remote documents.
const maxDocumentBytes = 8 << 20

//go:embed data/*.s2v
var builtin embed.FS

// Loader fetches the first readable candidate.
type Loader struct {
	fs         afero.Fs
	client     *http.Client
	candidates []string
	logger     *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for URL candidates.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger.WithComponent("sample")
		}
	}
}

// NewLoader returns a Loader over candidates, reading local files from fs.
func NewLoader(fs afero.Fs, candidates []string, opts ...Option) *Loader {
	l := &Loader{
		fs:         fs,
		client:     &http.Client{Timeout: 3 * time.Second},
		candidates: candidates,
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Candidates returns the configured candidates with glob patterns expanded
// to the matching files, in sorted order. A pattern with no match is dropped.
func (l *Loader) Candidates() []string {
	var out []string
	for _, c := range l.candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if isRemote(c) || strings.HasPrefix(c, BuiltinPrefix) || !hasMeta(c) {
			out = append(out, c)
			continue
		}
		out = append(out, l.expand(c)...)
	}
	return out
}

// Fetch returns the text of the first readable candidate and the candidate
// it came from. When none can be read the error wraps ErrSampleUnavailable.
func (l *Loader) Fetch(ctx context.Context) (text, source string, err error) {
	for _, c := range l.Candidates() {
		if err := ctx.Err(); err != nil {
			return "", "", errors.Join(errors.ErrCanceled, err)
		}
		text, err := l.fetchOne(ctx, c)
		if err != nil {
			l.logger.Debug("sample candidate skipped", "candidate", c, "error", err)
			continue
		}
		l.logger.Info("sample fetched", "candidate", c, "bytes", len(text))
		return text, c, nil
	}
	return "", "", errors.NewDocumentError(errors.OpSample, UnavailableMessage, errors.ErrSampleUnavailable)
}

func (l *Loader) fetchOne(ctx context.Context, candidate string) (string, error) {
	switch {
	case strings.HasPrefix(candidate, BuiltinPrefix):
		return readBuiltin(strings.TrimPrefix(candidate, BuiltinPrefix))
	case isRemote(candidate):
		return l.fetchURL(ctx, candidate)
	default:
		return fileio.ReadDocument(l.fs, candidate)
	}
}

func (l *Loader) fetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewDocumentError(errors.OpSample, "invalid sample URL", err).WithPath(url)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", errors.NewDocumentError(errors.OpSample, "sample request failed", err).WithPath(url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewDocumentError(errors.OpSample, "unexpected status "+resp.Status,
			errors.ErrSampleUnavailable).WithPath(url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", errors.NewDocumentError(errors.OpSample, "failed to read sample response", err).WithPath(url)
	}
	return string(data), nil
}

// expand walks the static prefix of pattern and returns matching files.
func (l *Loader) expand(pattern string) []string {
	pattern = filepath.ToSlash(filepath.Clean(pattern))
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		l.logger.Debug("invalid sample pattern", "pattern", pattern, "error", err)
		return nil
	}

	root := staticPrefix(pattern)
	var matches []string
	_ = afero.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && g.Match(filepath.ToSlash(p)) {
			matches = append(matches, p)
		}
		return nil
	})
	sort.Strings(matches)
	return matches
}

// staticPrefix returns the deepest directory of pattern without glob syntax.
func staticPrefix(pattern string) string {
	i := strings.IndexAny(pattern, "*?[{")
	if i < 0 {
		return path.Dir(pattern)
	}
	dir := path.Dir(pattern[:i+1])
	if dir == "" {
		return "."
	}
	return dir
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func readBuiltin(name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	data, err := builtin.ReadFile("data/" + path.Base(name))
	if err != nil {
		return "", errors.NewNotFoundError("builtin document", name).WithCause(err)
	}
	return string(data), nil
}

// Builtin returns the embedded demo document.
func Builtin() string {
	text, _ := readBuiltin(DefaultName)
	return text
}
