// Package browse implements a full-screen, read-only phone book browser with
// live fuzzy search.
package browse

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/phonebook/internal/contact"
	"github.com/smileynet/phonebook/internal/search"
)

// chromeHeight is the number of lines used by the title, search, and help bars.
const chromeHeight = 4

// maxColumnWidth caps a column so wide values do not push others off screen.
const maxColumnWidth = 28

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// Source is the phone book the browser reads.
type Source interface {
	Contacts() []contact.Contact
	Search(query string, f contact.Field) []search.Match
}

// Model is the Bubble Tea model for the browser.
type Model struct {
	source    Source
	table     table.Model
	input     textinput.Model
	help      help.Model
	keys      keyMap
	field     contact.Field
	searching bool
	total     int
	shown     int
}

// NewModel creates a browser over source showing every contact.
func NewModel(source Source) Model {
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "query"

	m := Model{
		source: source,
		table: table.New(
			table.WithColumns(columns(nil)),
			table.WithFocused(true),
		),
		input: input,
		help:  help.New(),
		keys:  defaultKeyMap(),
		field: contact.LastName,
	}
	m.refresh()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-chromeHeight, 1))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Field):
		m.field = nextField(m.field)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Apply):
		m.searching = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.searching = false
		m.input.Blur()
		m.input.Reset()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Field):
		m.field = nextField(m.field)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

// refresh rebuilds the table rows from the current query and field.
func (m *Model) refresh() {
	all := m.source.Contacts()
	m.total = len(all)

	var rows []table.Row
	if m.input.Value() == "" {
		rows = make([]table.Row, len(all))
		for i, c := range all {
			rows[i] = row(i, c)
		}
	} else {
		matches := m.source.Search(m.input.Value(), m.field)
		rows = make([]table.Row, len(matches))
		for i, match := range matches {
			rows[i] = row(match.Index, match.Contact)
		}
	}

	m.shown = len(rows)
	m.table.SetColumns(columns(rows))
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func row(index int, c contact.Contact) table.Row {
	return append(table.Row{strconv.Itoa(index + 1)}, c.Values()...)
}

// columns sizes each column to its widest cell, capped at maxColumnWidth.
func columns(rows []table.Row) []table.Column {
	titles := append([]string{"#"}, contact.Labels()...)
	cols := make([]table.Column, len(titles))
	for i, title := range titles {
		w := lipgloss.Width(title)
		for _, r := range rows {
			w = max(w, lipgloss.Width(r[i]))
		}
		cols[i] = table.Column{Title: title, Width: min(w, maxColumnWidth)}
	}
	return cols
}

func nextField(f contact.Field) contact.Field {
	return contact.Fields[(int(f)+1)%len(contact.Fields)]
}

// View renders the title, search bar, table, and help bar.
func (m Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("Phonebook: %d contacts", m.total))

	status := dimStyle.Render(fmt.Sprintf("search by %s", m.field.Label()))
	if m.searching || m.input.Value() != "" {
		status = fmt.Sprintf("%s  %s", m.input.View(), dimStyle.Render(fmt.Sprintf("%s, %d of %d", m.field.Label(), m.shown, m.total)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		m.table.View(),
		m.help.View(m.keys),
	)
}
