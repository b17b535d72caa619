package sample

import (
	"context"
	"path"
	"strings"

	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// SeedMarker remembers whether the sample was shown in this session.
type SeedMarker interface {
	SampleLoaded() bool
	MarkSampleLoaded()
}

// Bootstrapper runs the first-activation sequence of a view: reset the
// sheet, then show the sample once per session.
type Bootstrapper struct {
	loader  *Loader
	marker  SeedMarker
	enabled bool
	logger  *logging.Logger
}

// NewBootstrapper returns a Bootstrapper. With enabled false the sheet is
// only reset.
func NewBootstrapper(loader *Loader, marker SeedMarker, enabled bool, logger *logging.Logger) *Bootstrapper {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bootstrapper{
		loader:  loader,
		marker:  marker,
		enabled: enabled,
		logger:  logger.WithComponent("bootstrap"),
	}
}

// Loader returns the sample loader.
func (b *Bootstrapper) Loader() *Loader {
	return b.loader
}

// Begin resets the sheet and reports whether the sample should be fetched.
// Without an engine nothing happens and the view keeps its "not ready"
// status.
func (b *Bootstrapper) Begin(c *grid.Controller) bool {
	if !c.Available() {
		return false
	}
	c.Reset()
	if !b.enabled || b.loader == nil || b.marker == nil || b.marker.SampleLoaded() {
		return false
	}
	c.SetNotice("Loading %s...", DefaultName)
	return true
}

// Finish records the sample as shown and selects the first cell. It runs
// after the decode poll settles, whether or not anything was populated.
func (b *Bootstrapper) Finish(c *grid.Controller, source string) {
	b.marker.MarkSampleLoaded()
	c.JumpTo(grid.Address{Row: 1, Col: 1})
	c.SetNotice("Loaded %s", DisplayName(source))
}

// Fail reports a fetch or load failure. The sheet stays empty.
func (b *Bootstrapper) Fail(c *grid.Controller, err error) {
	b.logger.Warn("sample not loaded", "error", err)
	c.ReportError(err, UnavailableMessage)
}

// Run performs the whole sequence synchronously: Begin, fetch, blocking
// decode, Finish.
func (b *Bootstrapper) Run(ctx context.Context, c *grid.Controller) error {
	if !c.Available() {
		return errors.NewEngineError("engine not ready", errors.ErrEngineUnavailable)
	}
	if !b.Begin(c) {
		return nil
	}
	text, source, err := b.loader.Fetch(ctx)
	if err != nil {
		b.Fail(c, err)
		return err
	}
	if _, err := c.LoadBlocking(ctx, text); err != nil {
		b.Fail(c, err)
		return err
	}
	b.Finish(c, source)
	return nil
}

// DisplayName returns the short name of a candidate for status messages.
func DisplayName(source string) string {
	source = strings.TrimPrefix(source, BuiltinPrefix)
	if i := strings.IndexAny(source, "?#"); i >= 0 && isRemote(source) {
		source = source[:i]
	}
	if base := path.Base(strings.ReplaceAll(source, "\\", "/")); base != "." && base != "/" {
		return base
	}
	return DefaultName
}
