package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"rtcview/cli/loader"
	"rtcview/cli/session"
	"rtcview/cli/telemetry"
	"rtcview/schema"
)

type FlowState int

const (
	StatePicking FlowState = iota
	StateLoading
	StateResults
)

// Store keeps imported documents between screens. *session.Store is the
// implementation used by the commands.
type Store interface {
	Put(doc *schema.Document) string
	Replace(id string, doc *schema.Document) bool
	Get(id string) (*schema.Document, bool)
	Delete(id string)
	Recent() []session.Entry
}

// Options configures a viewer run.
type Options struct {
	Store     Store
	Metrics   *telemetry.Metrics
	ExportDir string
	StartDir  string
	// Watcher, when set, reloads the dashboard whenever its file changes.
	Watcher *Watcher
}

// ViewerModel moves between the import screen and the dashboard.
type ViewerModel struct {
	state     FlowState
	picker    PickerModel
	dashboard DashboardModel
	opts      Options
	width     int
	height    int

	// watchID is the session fed by the watcher.
	watchID string
}

func NewViewerModel(opts Options) ViewerModel {
	return ViewerModel{
		state:  StatePicking,
		picker: NewPickerModel(opts.StartDir),
		opts:   opts,
	}
}

// NewViewerModelWithDocument opens the dashboard directly.
func NewViewerModelWithDocument(opts Options, doc *schema.Document) ViewerModel {
	m := NewViewerModel(opts)
	m = m.open(doc)
	if opts.Watcher != nil {
		m.watchID = m.dashboard.SessionID()
	}
	return m
}

func (m ViewerModel) State() FlowState { return m.state }

func (m ViewerModel) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return m.opts.Watcher.Next()
	}
	return m.picker.Init()
}

// Custom Messages
type docLoadedMsg struct {
	doc *schema.Document
}

type loadErrMsg struct {
	err error
}

// loadCmd imports a file or a built-in sample off the update loop.
func (m ViewerModel) loadCmd(kind, name string) tea.Cmd {
	metrics := m.opts.Metrics
	return func() tea.Msg {
		start := time.Now()
		var (
			doc *schema.Document
			err error
		)
		if kind == "sample" {
			doc, err = loader.LoadSample(name)
		} else {
			doc, err = loader.LoadReport(name)
		}
		if metrics != nil {
			metrics.Observe(kind, doc, err, time.Since(start))
		}
		if err != nil {
			log.Warn("import failed", "source", name, "error", err)
			return loadErrMsg{err: err}
		}
		return docLoadedMsg{doc: doc}
	}
}

// open stores doc, replacing any earlier import of the same source, and
// shows it.
func (m ViewerModel) open(doc *schema.Document) ViewerModel {
	for _, e := range m.opts.Store.Recent() {
		if e.Source == doc.Source {
			m.opts.Store.Delete(e.ID)
		}
	}
	return m.show(m.opts.Store.Put(doc), doc)
}

func (m ViewerModel) show(id string, doc *schema.Document) ViewerModel {
	m.dashboard = NewDashboardModel(doc, id, m.opts.ExportDir)
	if m.width > 0 {
		d, _ := m.dashboard.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.dashboard = d.(DashboardModel)
	}
	m.picker.Err = ""
	m.state = StateResults
	return m
}

// reopen shows the newest stored import, if it has not expired.
func (m ViewerModel) reopen() ViewerModel {
	recent := m.opts.Store.Recent()
	if len(recent) == 0 {
		return m
	}
	doc, ok := m.opts.Store.Get(recent[0].ID)
	if !ok {
		return m
	}
	return m.show(recent[0].ID, doc)
}

// back returns to the import screen. The import stays in the store until it
// expires.
func (m ViewerModel) back() ViewerModel {
	m.dashboard = DashboardModel{}
	m.state = StatePicking
	return m
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle Global Messages
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		p, _ := m.picker.Update(msg)
		m.picker = p.(PickerModel)
		if m.state == StateResults {
			d, _ := m.dashboard.Update(msg)
			m.dashboard = d.(DashboardModel)
		}
		return m, nil

	case docLoadedMsg:
		return m.open(msg.doc), nil

	case loadErrMsg:
		m.picker.Err = loader.UserMessage(msg.err)
		m.state = StatePicking
		return m, nil

	case fileReloadedMsg:
		var next tea.Cmd
		if m.opts.Watcher != nil {
			next = m.opts.Watcher.Next()
		}
		showing := m.state == StateResults && m.dashboard.SessionID() == m.watchID
		if msg.err != nil {
			log.Warn("reload failed", "error", msg.err)
			if showing {
				m.dashboard.setNotice("Reload failed: "+loader.UserMessage(msg.err), true)
			}
			return m, next
		}
		if !m.opts.Store.Replace(m.watchID, msg.doc) {
			m.watchID = m.opts.Store.Put(msg.doc)
		}
		if showing {
			m.dashboard.sessionID = m.watchID
			m.dashboard = m.dashboard.SetDocument(msg.doc)
			m.dashboard.setNotice(fmt.Sprintf("Reloaded at %s", msg.doc.ImportedAt.Format("15:04:05")), false)
		}
		return m, next

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.state {
	case StatePicking:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "d":
				m.state = StateLoading
				return m, m.loadCmd("sample", "legacy")
			case "n":
				m.state = StateLoading
				return m, m.loadCmd("sample", "new")
			case "r":
				return m.reopen(), nil
			case "enter":
				if path, ok := m.picker.SelectedFile(); ok {
					m.state = StateLoading
					return m, m.loadCmd("file", path)
				}
			}
		}

		// Delegate to Picker
		newPicker, newCmd := m.picker.Update(msg)
		m.picker = newPicker.(PickerModel)
		cmd = newCmd

	case StateResults:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc", "backspace":
				return m.back(), nil
			}
		}

		newDashboard, newCmd := m.dashboard.Update(msg)
		m.dashboard = newDashboard.(DashboardModel)
		cmd = newCmd
	}

	return m, cmd
}

func (m ViewerModel) View() string {
	switch m.state {
	case StatePicking:
		return m.picker.View() + m.recentView()
	case StateLoading:
		return "\n  Loading test results...\n"
	case StateResults:
		footer := "\n  (Tab/1-6: Switch tab • ↑/↓: Scroll • e: Export JSON • s: Save Report • Esc: Back • q: Quit)"
		return m.dashboard.View() + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(footer)
	}
	return ""
}

// recentView lists imports still held in the store.
func (m ViewerModel) recentView() string {
	recent := m.opts.Store.Recent()
	if len(recent) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n  Recent imports (r: reopen newest)\n")
	for i, e := range recent {
		if i == 3 {
			break
		}
		sb.WriteString(hintStyle.Render(fmt.Sprintf("    %s (%s) %s", e.Source, e.Variant, humanize.Time(e.ImportedAt))))
		sb.WriteString("\n")
	}
	return sb.String()
}
