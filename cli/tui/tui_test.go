package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcview/cli/loader"
	"rtcview/cli/session"
	"rtcview/cli/telemetry"
	"rtcview/derive"
	"rtcview/schema"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sample(t *testing.T, name string) *schema.Document {
	t.Helper()
	doc, err := loader.LoadSample(name)
	require.NoError(t, err)
	return doc
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	s := session.New(time.Minute)
	t.Cleanup(s.Close)
	return s
}

// run executes cmd and feeds its message back, as the program loop would.
func run(t *testing.T, m ViewerModel, cmd tea.Cmd) ViewerModel {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(ViewerModel)
}

func TestDashboard_LazyTabs(t *testing.T) {
	m := NewDashboardModel(sample(t, "legacy"), "id", t.TempDir())
	assert.Equal(t, derive.SectionConnectivity, m.Active())
	assert.True(t, m.Rendered(derive.SectionConnectivity))
	assert.False(t, m.Rendered(derive.SectionICE), "tabs derive on first view only")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(DashboardModel)
	assert.Equal(t, derive.SectionAudio, m.Active())
	assert.True(t, m.Rendered(derive.SectionAudio))

	next, _ = m.Update(runes("6"))
	m = next.(DashboardModel)
	assert.Equal(t, derive.SectionICE, m.Active())
	assert.Contains(t, m.View(), "Selected Pair")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(DashboardModel)
	assert.Equal(t, derive.SectionConnectivity, m.Active(), "tabs wrap around")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(DashboardModel)
	assert.Equal(t, derive.SectionICE, m.Active())
}

func TestDashboard_Views(t *testing.T) {
	m := NewDashboardModel(sample(t, "new"), "id", t.TempDir())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 80})
	m = next.(DashboardModel)

	want := map[string]string{
		"1": "signalConnection",
		"2": "in range",
		"3": "HD",
		"4": "Audio Quality",
		"5": "Chrome 89.0.4389.114",
		"6": "not available in this test result format",
	}
	for key, text := range want {
		next, _ := m.Update(runes(key))
		view := next.(DashboardModel).View()
		assert.Contains(t, view, text, "tab %s", key)
	}
}

func TestDashboard_SaveAndExport(t *testing.T) {
	dir := t.TempDir()
	m := NewDashboardModel(sample(t, "new"), "id", dir)
	m.now = func() time.Time { return time.Date(2025, 2, 26, 9, 0, 0, 0, time.UTC) }

	next, _ := m.Update(runes("e"))
	m = next.(DashboardModel)
	jsonPath := filepath.Join(dir, "test-results-2025-02-26.json")
	assert.Equal(t, "Saved to "+jsonPath, m.Notice)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	_, err = loader.Parse(data, jsonPath)
	assert.NoError(t, err, "export imports again")

	next, _ = m.Update(runes("s"))
	m = next.(DashboardModel)
	mdPath := filepath.Join(dir, "test-results-2025-02-26.md")
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# WebRTC Preflight Test Report"))
}

func TestDashboard_SaveError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	m := NewDashboardModel(sample(t, "new"), "id", file)
	next, _ := m.Update(runes("e"))
	m = next.(DashboardModel)
	assert.True(t, strings.HasPrefix(m.Notice, "Error saving"))
	assert.True(t, m.noticeErr)
}

func TestDashboard_SetDocumentClearsTabs(t *testing.T) {
	m := NewDashboardModel(sample(t, "legacy"), "id", t.TempDir())
	next, _ := m.Update(runes("2"))
	m = next.(DashboardModel)
	assert.Contains(t, m.View(), "too high")

	m = m.SetDocument(sample(t, "new"))
	assert.Equal(t, derive.SectionAudio, m.Active(), "active tab is kept")
	assert.False(t, m.Rendered(derive.SectionConnectivity))
	assert.Contains(t, m.View(), "in range")
}

func TestViewer_SampleFlow(t *testing.T) {
	store := newStore(t)
	metrics := telemetry.New()
	m := NewViewerModel(Options{Store: store, Metrics: metrics, ExportDir: t.TempDir(), StartDir: t.TempDir()})
	assert.Equal(t, StatePicking, m.State())

	next, cmd := m.Update(runes("n"))
	m = next.(ViewerModel)
	assert.Equal(t, StateLoading, m.State())

	m = run(t, m, cmd)
	assert.Equal(t, StateResults, m.State())
	assert.Equal(t, schema.VariantNew, m.dashboard.Document().Variant())
	assert.Equal(t, 1, store.Len())

	id := m.dashboard.SessionID()

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(ViewerModel)
	assert.Equal(t, StatePicking, m.State())
	assert.Equal(t, 1, store.Len(), "going back keeps the import")
	assert.Contains(t, m.View(), "sample:new (new)")

	next, _ = m.Update(runes("r"))
	m = next.(ViewerModel)
	assert.Equal(t, StateResults, m.State())
	assert.Equal(t, id, m.dashboard.SessionID(), "reopen reuses the stored import")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	next, cmd = next.(ViewerModel).Update(runes("n"))
	m = run(t, next.(ViewerModel), cmd)
	assert.Equal(t, 1, store.Len(), "a re-import replaces the earlier one")
	assert.NotEqual(t, id, m.dashboard.SessionID())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	next, cmd = next.(ViewerModel).Update(runes("d"))
	m = run(t, next.(ViewerModel), cmd)
	assert.Equal(t, schema.VariantLegacy, m.dashboard.Document().Variant())
	assert.Equal(t, 2, store.Len())

	_, cmd = m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestViewer_ReopenWithNothingStored(t *testing.T) {
	m := NewViewerModel(Options{Store: newStore(t), StartDir: t.TempDir()})
	next, cmd := m.Update(runes("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, StatePicking, next.(ViewerModel).State())
}

func TestViewer_FileImportError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))

	m := NewViewerModel(Options{Store: newStore(t), ExportDir: dir, StartDir: dir})
	// The cursor starts on the parent entry.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(ViewerModel)
	path, ok := m.picker.SelectedFile()
	require.True(t, ok)
	assert.Equal(t, "broken.json", filepath.Base(path))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, next.(ViewerModel), cmd)
	assert.Equal(t, StatePicking, m.State())
	assert.Equal(t, "Failed to parse file. Please ensure it is a valid JSON file.", m.picker.Err)
	assert.Contains(t, m.View(), "Failed to parse file")
}

func TestViewer_FileImportRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"hello":"world"}`), 0o600))

	m := NewViewerModel(Options{Store: newStore(t), ExportDir: dir, StartDir: dir})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(ViewerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, next.(ViewerModel), cmd)
	assert.Equal(t, "Invalid file format. Please import a valid test results file.", m.picker.Err)
}

func TestViewer_ReloadReplacesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	legacy, err := os.ReadFile(filepath.Join("..", "samples", "legacy.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, legacy, 0o600))

	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	doc, err := loader.LoadReport(path)
	require.NoError(t, err)
	store := newStore(t)
	m := NewViewerModelWithDocument(Options{Store: store, ExportDir: dir, Watcher: w}, doc)
	id := m.dashboard.SessionID()

	newData, err := os.ReadFile(filepath.Join("..", "samples", "new.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, newData, 0o600))

	msg := w.Next()()
	reloaded, ok := msg.(fileReloadedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, reloaded.err)

	next, cmd := m.Update(reloaded)
	m = next.(ViewerModel)
	assert.NotNil(t, cmd, "watcher is re-armed")
	assert.Equal(t, schema.VariantNew, m.dashboard.Document().Variant())
	assert.Equal(t, id, m.dashboard.SessionID())
	stored, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, schema.VariantNew, stored.Variant())
	assert.True(t, strings.HasPrefix(m.dashboard.Notice, "Reloaded at"))
}

func TestViewer_ReloadErrorKeepsDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)
	defer w.Close()

	m := NewViewerModelWithDocument(Options{Store: newStore(t), ExportDir: dir, Watcher: w}, sample(t, "legacy"))
	next, _ := m.Update(fileReloadedMsg{err: loader.ErrParse})
	m = next.(ViewerModel)
	assert.Equal(t, schema.VariantLegacy, m.dashboard.Document().Variant())
	assert.True(t, m.dashboard.noticeErr)
	assert.Contains(t, m.dashboard.Notice, "Reload failed")
}

func TestViewer_ReloadLeavesOtherImportsAlone(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "results.json"), 0)
	require.NoError(t, err)
	defer w.Close()

	store := newStore(t)
	m := NewViewerModelWithDocument(Options{Store: store, ExportDir: dir, StartDir: dir, Watcher: w}, sample(t, "legacy"))
	watched := m.dashboard.SessionID()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	next, cmd := next.(ViewerModel).Update(runes("n"))
	m = run(t, next.(ViewerModel), cmd)
	require.NotEqual(t, watched, m.dashboard.SessionID())

	reloaded := sample(t, "new")
	next, _ = m.Update(fileReloadedMsg{doc: reloaded})
	m = next.(ViewerModel)
	assert.Empty(t, m.dashboard.Notice, "the open dashboard is not the watched one")
	stored, ok := store.Get(watched)
	require.True(t, ok)
	assert.Same(t, reloaded, stored)
}

func TestPicker_Navigation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.json"), nil, 0o600))

	p := NewPickerModel(dir)
	items := getItems(dir)
	require.Len(t, items, 3, "parent, sub/ and a.json")
	assert.Equal(t, "..", items[0].(fileItem).name)
	assert.Equal(t, "sub", items[1].(fileItem).name)
	assert.Equal(t, "a.json", items[2].(fileItem).name)

	_, ok := p.SelectedFile()
	assert.False(t, ok, "cursor starts on the parent entry")

	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.(PickerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(PickerModel)
	assert.Equal(t, filepath.Join(dir, "sub"), p.currentDir)

	next, _ = p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	p = next.(PickerModel)
	assert.Equal(t, dir, p.currentDir)
}
