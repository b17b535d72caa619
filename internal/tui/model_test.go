package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/sample"
	"github.com/Iron-Ham/sheetview/internal/testutil"
	"github.com/Iron-Ham/sheetview/internal/tui/keymap"
	"github.com/Iron-Ham/sheetview/internal/watch"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.text, c.err }
func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type memMarker struct{ marks int }

func (m *memMarker) SampleLoaded() bool { return m.marks > 0 }
func (m *memMarker) MarkSampleLoaded()  { m.marks++ }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TUI.WatchDocument = false
	return cfg
}

func newTestModel(t *testing.T, opts Options) (Model, *testutil.FakeEngine) {
	t.Helper()
	fake := testutil.NewFakeEngine()
	if opts.Fs == nil {
		opts.Fs = afero.NewMemMapFs()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &fakeClipboard{}
	}
	if opts.Config == nil {
		opts.Config = testConfig()
	}
	m := NewModel(engine.NewBridge("fake", fake), opts)
	m.Init()
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, fake
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := sendCmd(t, m, msg)
	return next
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func selected(t *testing.T, m Model) grid.Address {
	t.Helper()
	a, ok := m.ctrl.Selected()
	if !ok {
		t.Fatal("no cell selected")
	}
	return a
}

func TestModel_InitialView(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	if fake.ResetCalls != 1 {
		t.Errorf("Init reset the engine %d times, want 1", fake.ResetCalls)
	}
	view := m.View()
	for _, want := range []string{"Rows: 24, Cols: 12, Cells: 0", grid.NoSelectionMeta, " A ", hintText} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := len(strings.Split(view, "\n")); got != 24 {
		t.Errorf("view has %d lines, want 24", got)
	}
}

func TestModel_EngineUnavailable(t *testing.T) {
	m := NewModel(nil, Options{Config: testConfig(), Fs: afero.NewMemMapFs()})
	m.Init()
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = send(t, m, key(tea.KeyRight))
	m = send(t, m, runes("x"))

	if _, ok := m.ctrl.Selected(); ok {
		t.Error("nothing should be selectable without an engine")
	}
	if m.Mode() != keymap.ModeGrid {
		t.Errorf("Mode() = %s, want grid", m.Mode())
	}
	if !strings.Contains(m.View(), grid.NotReadyStatus) {
		t.Error("view should report the engine as not ready")
	}
}

func TestModel_TypeAndCommit(t *testing.T) {
	m, fake := newTestModel(t, Options{})

	m = send(t, m, key(tea.KeyRight))
	if a := selected(t, m); a != (grid.Address{Row: 1, Col: 2}) {
		t.Fatalf("selected %v, want B1", a)
	}

	m = send(t, m, runes("7"))
	if m.Mode() != keymap.ModeEdit {
		t.Fatalf("Mode() = %s, want edit", m.Mode())
	}
	m = send(t, m, runes("5"))
	if got := m.formula.Value(); got != "75" {
		t.Errorf("formula = %q, want 75", got)
	}

	m = send(t, m, key(tea.KeyEnter))
	if got := fake.CellContent(1, 2); got != "75" {
		t.Errorf("B1 content = %q, want 75", got)
	}
	if fake.SetCalls != 1 {
		t.Errorf("SetCellContent called %d times, want 1", fake.SetCalls)
	}
	if a := selected(t, m); a != (grid.Address{Row: 2, Col: 2}) {
		t.Errorf("selected %v after Enter, want B2", a)
	}
	if m.Mode() != keymap.ModeGrid {
		t.Errorf("Mode() = %s after commit, want grid", m.Mode())
	}
}

func TestModel_CommitDirections(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
		want grid.Address
	}{
		{"tab", tea.KeyTab, grid.Address{Row: 2, Col: 3}},
		{"shift+tab", tea.KeyShiftTab, grid.Address{Row: 2, Col: 1}},
		{"enter", tea.KeyEnter, grid.Address{Row: 3, Col: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake := newTestModel(t, Options{})
			m.ctrl.JumpTo(grid.Address{Row: 2, Col: 2})
			m = send(t, m, runes("a"))
			m = send(t, m, key(tt.key))
			if got := fake.CellContent(2, 2); got != "a" {
				t.Errorf("B2 content = %q, want a", got)
			}
			if a := selected(t, m); a != tt.want {
				t.Errorf("selected %v, want %v", a, tt.want)
			}
		})
	}
}

func TestModel_CancelEdit(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	m = send(t, m, key(tea.KeyCtrlHome))
	m = send(t, m, runes("z"))
	m = send(t, m, key(tea.KeyEsc))

	if fake.SetCalls != 0 {
		t.Errorf("cancel committed %d times", fake.SetCalls)
	}
	if m.Mode() != keymap.ModeGrid {
		t.Errorf("Mode() = %s, want grid", m.Mode())
	}
	if m.formula.Value() != "" {
		t.Errorf("formula = %q, want the cell's empty content", m.formula.Value())
	}
}

func TestModel_F2EditsExistingContent(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	_ = fake.SetCellContent(1, 1, "=SUM(B1)")
	m = send(t, m, key(tea.KeyCtrlHome))
	m = send(t, m, key(tea.KeyF2))

	if m.Mode() != keymap.ModeEdit {
		t.Fatalf("Mode() = %s, want edit", m.Mode())
	}
	if m.formula.Value() != "=SUM(B1)" || m.formula.Cursor() != len("=SUM(B1)") {
		t.Errorf("formula = %q cursor %d", m.formula.Value(), m.formula.Cursor())
	}
}

func TestModel_ClearCell(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	_ = fake.SetCellContent(1, 1, "x")
	m = send(t, m, key(tea.KeyCtrlHome))
	m = send(t, m, key(tea.KeyDelete))
	if got := fake.CellContent(1, 1); got != "" {
		t.Errorf("A1 content = %q after clear", got)
	}
}

func TestModel_PromptGoto(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, key(tea.KeyCtrlG))
	if m.Mode() != keymap.ModeCommand {
		t.Fatalf("Mode() = %s, want command", m.Mode())
	}
	m = send(t, m, runes("goto D40"))
	m = send(t, m, key(tea.KeyEnter))

	if m.Mode() != keymap.ModeGrid {
		t.Errorf("Mode() = %s after execute, want grid", m.Mode())
	}
	if a := selected(t, m); a != (grid.Address{Row: 40, Col: 4}) {
		t.Errorf("selected %v, want D40", a)
	}
	if ext := m.ctrl.Extent(); ext.Rows < 40 {
		t.Errorf("extent rows = %d, want at least 40", ext.Rows)
	}
	if vp := m.ctrl.Viewport(); vp.Top+vp.Rows < 40 {
		t.Errorf("viewport %+v does not show row 40", vp)
	}
}

func TestModel_PromptErrorsAndCancel(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, key(tea.KeyCtrlG))
	m = send(t, m, runes("bogus"))
	m = send(t, m, key(tea.KeyEnter))
	if !strings.Contains(m.View(), "Unknown command: bogus") {
		t.Error("unknown command should be reported")
	}

	m = send(t, m, key(tea.KeyCtrlG))
	m = send(t, m, runes("goto A5"))
	m = send(t, m, key(tea.KeyEsc))
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("canceled prompt should not run")
	}
	if m.errorMessage != "" {
		t.Error("opening the prompt should clear the previous error")
	}
}

func TestModel_OpenDocument(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string]string{"/docs/book.s2v": "1;2\n3;4"})
	m, fake := newTestModel(t, Options{Fs: fs})

	m = send(t, m, key(tea.KeyCtrlO))
	m = send(t, m, runes("/docs/book.s2v"))
	m, cmd := sendCmd(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("open should return a read command")
	}
	read, ok := cmd().(documentReadMsg)
	if !ok {
		t.Fatalf("command produced %T, want documentReadMsg", cmd())
	}

	m, cmd = sendCmd(t, m, read)
	if !m.ctrl.Loading() || cmd == nil {
		t.Fatal("load should be polling on frames")
	}
	m = send(t, m, frameMsg{})
	if m.ctrl.Loading() {
		t.Fatal("poll should settle once content is present")
	}
	if fake.LoadCalls != 1 {
		t.Errorf("LoadDocument called %d times", fake.LoadCalls)
	}
	if a := selected(t, m); a != (grid.Address{Row: 1, Col: 1}) {
		t.Errorf("selected %v, want A1", a)
	}
	if m.ctrl.Notice() != "Loaded book.s2v" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
	if m.DocumentPath() != "/docs/book.s2v" {
		t.Errorf("DocumentPath() = %q", m.DocumentPath())
	}
	if !strings.Contains(m.View(), "book.s2v") {
		t.Error("status bar should name the document")
	}
}

func TestModel_OpenMissingDocument(t *testing.T) {
	m, _ := newTestModel(t, Options{DocumentPath: "/nope.s2v"})
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should read the document")
	}
	m = send(t, m, cmd())
	if m.ctrl.Loading() {
		t.Error("failed read should not start a load")
	}
	if m.ctrl.Notice() == "" {
		t.Error("failed read should be reported")
	}
}

func TestModel_SaveAndReload(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string]string{"/docs/book.s2v": "1"})
	m, fake := newTestModel(t, Options{Fs: fs, DocumentPath: "/docs/book.s2v"})
	m = send(t, m, m.Init()())
	m = send(t, m, frameMsg{})

	_ = fake.SetCellContent(1, 2, "=A1*2")
	m, cmd := sendCmd(t, m, key(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatal("save should return a command")
	}
	m = send(t, m, cmd())
	if m.ctrl.Notice() != "Saved /docs/book.s2v" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
	data, err := afero.ReadFile(fs, "/docs/book.s2v")
	if err != nil || string(data) != "1;=A1*2" {
		t.Errorf("saved %q, %v", data, err)
	}

	m, cmd = sendCmd(t, m, key(tea.KeyCtrlR))
	read := cmd().(documentReadMsg)
	if !read.reload {
		t.Error("ctrl+r should reread the document")
	}
	resets := fake.ResetCalls
	m = send(t, m, read)
	m = send(t, m, frameMsg{})
	if fake.ResetCalls != resets {
		t.Error("reload should keep the extent and not reset")
	}
	if m.ctrl.Notice() != "Reloaded book.s2v" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
}

func TestModel_SaveWithoutDocumentFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testConfig()
	cfg.Save.DownloadDir = "/downloads"
	m, fake := newTestModel(t, Options{Fs: fs, Config: cfg})
	_ = fake.SetCellContent(1, 1, "x")

	m, cmd := sendCmd(t, m, key(tea.KeyCtrlS))
	m = send(t, m, cmd())
	if m.ctrl.Notice() != "Saved /downloads/spreadsheet.s2v" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
	if ok, _ := afero.Exists(fs, "/downloads/spreadsheet.s2v"); !ok {
		t.Error("fallback file not written")
	}
}

func TestModel_SampleBootstrap(t *testing.T) {
	marker := &memMarker{}
	loader := sample.NewLoader(afero.NewMemMapFs(), []string{"builtin:sample.s2v"})
	boot := sample.NewBootstrapper(loader, marker, true, nil)

	fake := testutil.NewFakeEngine()
	m := NewModel(engine.NewBridge("fake", fake), Options{
		Config:       testConfig(),
		Fs:           afero.NewMemMapFs(),
		Bootstrapper: boot,
	})
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("first activation should fetch the sample")
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = send(t, m, cmd())
	m = send(t, m, frameMsg{})

	if marker.marks != 1 {
		t.Errorf("marker set %d times, want 1", marker.marks)
	}
	if a := selected(t, m); a != (grid.Address{Row: 1, Col: 1}) {
		t.Errorf("selected %v, want A1", a)
	}
	if m.ctrl.Notice() != "Loaded sample.s2v" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}

	second := NewModel(engine.NewBridge("fake", testutil.NewFakeEngine()), Options{
		Config:       testConfig(),
		Fs:           afero.NewMemMapFs(),
		Bootstrapper: boot,
	})
	if second.Init() != nil {
		t.Error("marker should suppress the sample on later activations")
	}
}

func TestModel_SampleFailure(t *testing.T) {
	loader := sample.NewLoader(afero.NewMemMapFs(), []string{"/missing.s2v"})
	boot := sample.NewBootstrapper(loader, &memMarker{}, true, nil)
	m, _ := newTestModel(t, Options{Bootstrapper: boot})

	m = send(t, m, fetchSample(loader)())
	if !strings.HasPrefix(m.ctrl.Notice(), sample.UnavailableMessage) {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("failed sample should leave nothing selected")
	}
}

func TestModel_MouseClick(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, tea.MouseMsg{X: 27, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a := selected(t, m); a != (grid.Address{Row: 4, Col: 3}) {
		t.Errorf("selected %v, want C4", a)
	}

	m = send(t, m, tea.MouseMsg{X: 1, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a := selected(t, m); a != (grid.Address{Row: 4, Col: 3}) {
		t.Errorf("row header click changed the selection to %v", a)
	}

	m = send(t, m, tea.MouseMsg{X: 20, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.Mode() != keymap.ModeEdit {
		t.Errorf("formula bar click should start editing, mode %s", m.Mode())
	}
}

func TestModel_ClickCommitsEdit(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	m = send(t, m, key(tea.KeyCtrlHome))
	m = send(t, m, runes("9"))
	m = send(t, m, tea.MouseMsg{X: 27, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	if got := fake.CellContent(1, 1); got != "9" {
		t.Errorf("A1 content = %q, want 9", got)
	}
	if a := selected(t, m); a != (grid.Address{Row: 4, Col: 3}) {
		t.Errorf("selected %v, want C4", a)
	}
}

func TestModel_WheelGrowthCoalesces(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	wheel := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}

	m, cmd := sendCmd(t, m, wheel)
	if cmd == nil || !m.frameScheduled {
		t.Fatal("scrolling near the edge should schedule a frame")
	}
	m = send(t, m, wheel)
	m = send(t, m, wheel)
	if m.ctrl.GrowthState() != grid.GrowthScheduled {
		t.Fatalf("GrowthState() = %s", m.ctrl.GrowthState())
	}

	m = send(t, m, frameMsg{})
	if got := m.ctrl.Extent().Rows; got != 34 {
		t.Errorf("extent rows = %d after one frame, want 34", got)
	}
	if m.ctrl.Surface().Extent().Rows != 34 {
		t.Error("surface should follow the extent")
	}
}

func TestModel_WheelUpDoesNotGrow(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if m.ctrl.GrowthState() != grid.GrowthIdle || m.frameScheduled {
		t.Error("scrolling up should not schedule growth")
	}
}

func TestModel_MouseDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.TUI.Mouse = false
	m, _ := newTestModel(t, Options{Config: cfg})
	m = send(t, m, tea.MouseMsg{X: 27, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("clicks should be ignored with the mouse disabled")
	}
}

func TestModel_Clipboard(t *testing.T) {
	clip := &fakeClipboard{text: "pasted\n"}
	m, fake := newTestModel(t, Options{Clipboard: clip})
	m = send(t, m, key(tea.KeyCtrlHome))

	m, cmd := sendCmd(t, m, key(tea.KeyCtrlP))
	m = send(t, m, cmd())
	if got := fake.CellContent(1, 1); got != "pasted" {
		t.Errorf("A1 content = %q, want pasted", got)
	}

	m, cmd = sendCmd(t, m, key(tea.KeyCtrlY))
	clip.text = ""
	m = send(t, m, cmd())
	if clip.text != "pasted" {
		t.Errorf("clipboard = %q, want pasted", clip.text)
	}
	if m.ctrl.Notice() != "Copied A1" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
}

func TestModel_ClipboardError(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	m, _ := newTestModel(t, Options{Clipboard: clip})
	m = send(t, m, key(tea.KeyCtrlHome))
	m, cmd := sendCmd(t, m, key(tea.KeyCtrlP))
	m = send(t, m, cmd())
	if m.ctrl.Notice() != "Clipboard unavailable" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
}

func TestModel_NewSheet(t *testing.T) {
	m, fake := newTestModel(t, Options{})
	m.ctrl.JumpTo(grid.Address{Row: 50, Col: 20})
	m = send(t, m, key(tea.KeyCtrlN))

	if fake.ResetCalls != 2 {
		t.Errorf("ResetCalls = %d, want 2", fake.ResetCalls)
	}
	if ext := m.ctrl.Extent(); ext != (grid.Extent{Rows: 24, Cols: 12}) {
		t.Errorf("extent = %+v, want the default", ext)
	}
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("new sheet should clear the selection")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = send(t, m, key(tea.KeyF1))
	view := m.View()
	for _, want := range []string{"Navigation", "Formula bar", "goto <cell>"} {
		if !strings.Contains(view, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if got := len(strings.Split(view, "\n")); got != 40 {
		t.Errorf("help view has %d lines, want 40", got)
	}
	m = send(t, m, key(tea.KeyEsc))
	if m.showHelp {
		t.Error("Esc should close help")
	}
}

func TestModel_WatchNotice(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, watchMsg(watch.Change{Path: "/docs/book.s2v"}))
	if !strings.Contains(m.ctrl.Notice(), "book.s2v changed on disk") {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
	m = send(t, m, watchMsg(watch.Change{Path: "/docs/book.s2v", Removed: true}))
	if !strings.Contains(m.ctrl.Notice(), "removed") {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
}

func TestModel_ConfigReload(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if m.layout.Cols != 6 {
		t.Fatalf("layout cols = %d, want 6", m.layout.Cols)
	}
	cfg := testConfig()
	cfg.TUI.ColumnWidth = 5
	cfg.Grid.RowStep = 50
	m = send(t, m, configChangedMsg{cfg: cfg})

	if m.layout.Cols != 12 {
		t.Errorf("layout cols = %d, want 12", m.layout.Cols)
	}
	if m.ctrl.Viewport().Cols != 12 {
		t.Errorf("viewport cols = %d, want 12", m.ctrl.Viewport().Cols)
	}
	if m.ctrl.Notice() != "Configuration reloaded" {
		t.Errorf("Notice() = %q", m.ctrl.Notice())
	}
}

func TestModel_ThemeCommand(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = m.executeCommand("theme nord")
	if m.styles.Palette.Primary != "#88C0D0" {
		t.Errorf("primary = %v, want nord", m.styles.Palette.Primary)
	}
	m, _ = m.executeCommand("theme neon")
	if m.errorMessage == "" {
		t.Error("unknown theme should be reported")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, cmd := sendCmd(t, m, key(tea.KeyCtrlQ))
	if !m.quitting || cmd == nil {
		t.Fatal("ctrl+q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
