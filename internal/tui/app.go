package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/sources"
)

// Lister loads every stored preview, newest first.
type Lister interface {
	All(ctx context.Context) ([]db.Preview, error)
}

// flag toggles narrow the list to previews with that flag set.
type flag int

const (
	flagSaved flag = iota
	flagBookmarked
	flagEmbellished
)

var flagLabels = []struct {
	flag  flag
	label string
}{
	{flagSaved, "[saved]"},
	{flagBookmarked, "[bookmarked]"},
	{flagEmbellished, "[embellished]"},
}

type model struct {
	lister      Lister
	searchInput textinput.Model
	list        list.Model
	previews    []db.Preview
	only        map[flag]bool
	width       int
	height      int
	searching   bool
	err         error
}

type previewItem struct {
	preview db.Preview
}

func (p previewItem) Title() string {
	title := db.Str(p.preview.Title)
	if title == "" {
		title = p.preview.URL
	}
	return fmt.Sprintf("%s %s", kindIcon(p.preview.URL), title)
}

func (p previewItem) Description() string {
	if tags := db.Str(p.preview.Tags); tags != "" {
		return tags + "  " + p.preview.URL
	}
	return p.preview.URL
}

func (p previewItem) FilterValue() string {
	return db.Str(p.preview.Title) + " " + db.Str(p.preview.Summary) + " " + db.Str(p.preview.Tags) + " " + p.preview.URL
}

func kindIcon(url string) string {
	switch sources.Classify(url).Kind {
	case sources.KindPaper:
		return "[P]"
	case sources.KindSocialPost:
		return "[S]"
	case sources.KindRepository:
		return "[R]"
	default:
		return "[D]"
	}
}

func initialModel(lister Lister) model {
	ti := textinput.New()
	ti.Placeholder = "Search previews..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "linkstitcher"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return model{
		lister:      lister,
		searchInput: ti,
		list:        l,
		only:        map[flag]bool{},
	}
}

type loadedMsg struct {
	previews []db.Preview
	err      error
}

func (m model) Init() tea.Cmd {
	return m.load
}

func (m model) load() tea.Msg {
	previews, err := m.lister.All(context.Background())
	return loadedMsg{previews: previews, err: err}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc", "enter":
				m.searching = false
				m.searchInput.Blur()
				m.refresh()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
		} else {
			return m.listKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.searchInput.Width = msg.Width - 20

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.previews = msg.previews
		m.refresh()
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
		// live search
		m.refresh()
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "j", "down":
		m.list.CursorDown()
		return m, nil
	case "k", "up":
		m.list.CursorUp()
		return m, nil
	case "g":
		m.list.Select(0)
		return m, nil
	case "G":
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
		}
		return m, nil
	case "o":
		if item, ok := m.list.SelectedItem().(previewItem); ok {
			openBrowser(item.preview.URL)
		}
		return m, nil
	case "1", "2", "3":
		f := flag(msg.String()[0] - '1')
		m.only[f] = !m.only[f]
		m.refresh()
		return m, nil
	case "r":
		return m, m.load
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// refresh rebuilds the visible items from the loaded previews, the query
// and the flag toggles.
func (m *model) refresh() {
	m.list.SetItems(m.visible())
}

func (m model) visible() []list.Item {
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))

	items := make([]list.Item, 0, len(m.previews))
	for _, p := range m.previews {
		if m.only[flagSaved] && !p.Saved {
			continue
		}
		if m.only[flagBookmarked] && !p.Bookmarked {
			continue
		}
		if m.only[flagEmbellished] && !p.Embellished {
			continue
		}
		item := previewItem{preview: p}
		if query != "" && !strings.Contains(strings.ToLower(item.FilterValue()), query) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	activeFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	inactiveFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	filters := make([]string, 0, len(flagLabels))
	for _, f := range flagLabels {
		if m.only[f.flag] {
			filters = append(filters, activeFilter.Render(f.label))
		} else {
			filters = append(filters, inactiveFilter.Render(f.label))
		}
	}

	searchBox := searchStyle.Render(m.searchInput.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, searchBox, "  ", strings.Join(filters, " ")))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	help := "[j/k]nav [g/G]top/end [/]search [o]pen [1-3]only saved/bookmarked/embellished [r]eload [q]uit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the preview browser.
func Run(lister Lister) error {
	p := tea.NewProgram(initialModel(lister), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
