package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"rtcview/cli/format"
	"rtcview/derive"
	"rtcview/schema"
)

var (
	resultsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	activeTabStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("62")).Padding(0, 1)
	tabStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Padding(0, 1)
	noticeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Lines taken by the title, tabs and footer around the viewport.
const chromeHeight = 7

var tabTitles = map[derive.Section]string{
	derive.SectionConnectivity: "Overview",
	derive.SectionAudio:        "Audio",
	derive.SectionVideo:        "Video",
	derive.SectionNetwork:      "Network",
	derive.SectionDevice:       "Device",
	derive.SectionICE:          "ICE",
}

// DashboardModel shows one document as tabs, deriving each tab's metrics the
// first time it is shown.
type DashboardModel struct {
	doc       *schema.Document
	sessionID string
	exportDir string

	active   int
	viewport viewport.Model
	rendered map[derive.Section]string
	width    int

	// Notice is the result of the last save, export or reload.
	Notice    string
	noticeErr bool

	now func() time.Time
}

func NewDashboardModel(doc *schema.Document, sessionID, exportDir string) DashboardModel {
	m := DashboardModel{
		doc:       doc,
		sessionID: sessionID,
		exportDir: exportDir,
		viewport:  viewport.New(80, 20),
		rendered:  map[derive.Section]string{},
		width:     80,
		now:       time.Now,
	}
	m.refresh()
	return m
}

func (m DashboardModel) Document() *schema.Document { return m.doc }
func (m DashboardModel) SessionID() string          { return m.sessionID }
func (m DashboardModel) Active() derive.Section     { return derive.Sections[m.active] }

// Rendered reports whether a section has been derived yet.
func (m DashboardModel) Rendered(s derive.Section) bool {
	_, ok := m.rendered[s]
	return ok
}

// SetDocument swaps in a reloaded document and drops every derived tab.
func (m DashboardModel) SetDocument(doc *schema.Document) DashboardModel {
	m.doc = doc
	m.rendered = map[derive.Section]string{}
	m.refresh()
	return m
}

func (m *DashboardModel) refresh() {
	sec := m.Active()
	content, ok := m.rendered[sec]
	if !ok {
		rep, err := derive.Derive(m.doc, sec)
		if err != nil {
			content = errorStyle.Render(err.Error())
		} else {
			content = renderSection(rep, m.width)
		}
		m.rendered[sec] = content
		log.Debug("section derived", "section", sec, "source", m.doc.Source)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m DashboardModel) selectTab(i int) DashboardModel {
	n := len(derive.Sections)
	m.active = ((i % n) + n) % n
	m.refresh()
	return m
}

func (m *DashboardModel) setNotice(msg string, err bool) {
	m.Notice, m.noticeErr = msg, err
}

func (m DashboardModel) save(kind format.Kind) DashboardModel {
	path, err := format.Save(m.exportDir, m.doc, kind, m.now())
	if err != nil {
		log.Error("save failed", "kind", kind, "error", err)
		m.setNotice(fmt.Sprintf("Error saving: %v", err), true)
		return m
	}
	log.Info("saved", "kind", kind, "path", path)
	m.setNotice(fmt.Sprintf("Saved to %s", path), false)
	return m
}

func (m DashboardModel) Init() tea.Cmd { return nil }

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		// Layout depends on width, so tabs render again on next view.
		m.rendered = map[derive.Section]string{}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "tab", "right", "l":
			return m.selectTab(m.active + 1), nil
		case "shift+tab", "left", "h":
			return m.selectTab(m.active - 1), nil
		case "1", "2", "3", "4", "5", "6":
			return m.selectTab(int(key[0] - '1')), nil
		case "e":
			return m.save(format.KindJSON), nil
		case "s":
			return m.save(format.KindMarkdown), nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DashboardModel) tabs() string {
	parts := make([]string, 0, len(derive.Sections))
	for i, sec := range derive.Sections {
		label := fmt.Sprintf("%d %s", i+1, tabTitles[sec])
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m DashboardModel) View() string {
	var s strings.Builder
	s.WriteString("\n")
	s.WriteString(resultsTitleStyle.Render(" WebRTC Test Results "))
	s.WriteString(mutedStyle.Render(fmt.Sprintf("  %s • %s format", m.doc.Source, m.doc.Variant())))
	s.WriteString("\n\n")
	s.WriteString(m.tabs())
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	if m.Notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		s.WriteString("  " + style.Render(m.Notice) + "\n")
	}
	return s.String()
}
