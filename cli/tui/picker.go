package tui

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	folderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	jsonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	importBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)
)

const nameColumn = 40

type fileItem struct {
	name  string
	path  string
	isDir bool
	info  fs.FileInfo
}

func (i fileItem) FilterValue() string { return i.name }

// fileDelegate draws one entry as name, size and age.
type fileDelegate struct{}

func (d fileDelegate) Height() int                             { return 1 }
func (d fileDelegate) Spacing() int                            { return 0 }
func (d fileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d fileDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(fileItem)
	if !ok {
		return
	}

	name, style := i.name, jsonStyle
	if i.isDir {
		name += "/"
		style = folderStyle
	}
	var size, age string
	if i.info != nil {
		age = humanize.Time(i.info.ModTime())
		if !i.isDir {
			size = humanize.Bytes(uint64(i.info.Size()))
		}
	}

	cursor := "  "
	if index == m.Index() {
		cursor = cursorStyle.Render("> ")
		style = cursorStyle
	}

	fmt.Fprintf(w, "%s%s %s  %s",
		cursor,
		style.Width(nameColumn).MaxWidth(nameColumn).Render(name),
		metaStyle.Width(8).Align(lipgloss.Right).Render(size),
		metaStyle.Render(age),
	)
}

// PickerModel browses the filesystem for one .json test-results file.
type PickerModel struct {
	list       list.Model
	currentDir string

	// Err is the message of the last failed import, shown above the list.
	Err string

	quitting bool
}

func NewPickerModel(dir string) PickerModel {
	if dir == "" {
		dir, _ = os.Getwd()
	}

	l := list.New(getItems(dir), fileDelegate{}, 80, 20)
	l.Title = "Import Test Results"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("205")).Bold(true)

	return PickerModel{list: l, currentDir: dir}
}

// getItems lists subdirectories and .json files of dir, parent first.
func getItems(dir string) []list.Item {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []list.Item{}
	}

	dirs := []fileItem{{name: "..", path: filepath.Dir(dir), isDir: true}}
	var files []fileItem

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		item := fileItem{
			name:  e.Name(),
			path:  filepath.Join(dir, e.Name()),
			isDir: e.IsDir(),
			info:  info,
		}

		if e.IsDir() {
			dirs = append(dirs, item)
		} else if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, item)
		}
	}

	items := make([]list.Item, 0, len(dirs)+len(files))
	for _, d := range dirs {
		items = append(items, d)
	}
	for _, f := range files {
		items = append(items, f)
	}
	return items
}

// SelectedFile returns the file under the cursor, if the cursor is on a file.
func (m PickerModel) SelectedFile() (string, bool) {
	i, ok := m.list.SelectedItem().(fileItem)
	if !ok || i.isDir {
		return "", false
	}
	return i.path, true
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(fileItem); ok && i.isDir {
				return m.chdir(i.path)
			}
			return m, nil

		case "left", "backspace":
			return m.chdir(filepath.Dir(m.currentDir))
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-6) // Reserve space for header/footer
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PickerModel) chdir(dir string) (PickerModel, tea.Cmd) {
	m.currentDir = dir
	cmd := m.list.SetItems(getItems(dir))
	m.list.ResetSelected()
	return m, cmd
}

func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var box strings.Builder
	box.WriteString("Choose a test-results JSON file, or load demo data:\n")
	box.WriteString(hintStyle.Render("  d: legacy sample • n: new-format sample"))
	if m.Err != "" {
		box.WriteString("\n" + errorStyle.Render(m.Err))
	}
	header := importBoxStyle.Render(box.String())

	m.list.Title = fmt.Sprintf("Browse: %s", m.currentDir)

	help := hintStyle.Render("\n  (Enter: Open • Backspace: Up • d/n: Demo data • r: Reopen • q: Quit)")

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}
