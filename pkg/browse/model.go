package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/denoland-id/denoid/pkg/debounce"
	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/search"
	"github.com/denoland-id/denoid/pkg/web"
)

// chromeHeight is the number of lines used by everything except the list
const chromeHeight = 9

// Model is the bubbletea model of the module browser. Typing only updates
// the pending query; the list is re-filtered when Enter commits a
// different query.
type Model struct {
	modules []provider.Module
	visible []provider.Module
	site    *web.Site

	input textinput.Model
	query *debounce.Gate[string]

	cursor int
	offset int
	width  int
	height int

	keys   KeyMap
	styles Styles
}

// New creates a browser over modules, which must already be sorted
func New(modules []provider.Module, site *web.Site) Model {
	if site == nil {
		site = web.DefaultSite()
	}

	input := textinput.New()
	input.Placeholder = web.SearchPlaceholder
	input.Prompt = "› "
	input.CharLimit = 100
	input.Focus()

	return Model{
		modules: modules,
		visible: search.Filter(modules, ""),
		site:    site,
		input:   input,
		query:   debounce.New(""),
		height:  24,
		width:   80,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-8)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Clear):
		// Esc on an empty search exits; otherwise it clears and commits ""
		if m.input.Value() == "" && m.query.Committed() == "" {
			return m, tea.Quit
		}
		m.input.SetValue("")
		if m.query.CommitValue("") {
			m.refilter()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		if m.query.Commit() {
			m.refilter()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.query.Set(m.input.Value())
	return m, cmd
}

func (m *Model) refilter() {
	m.visible = search.Filter(m.modules, m.query.Committed())
	m.cursor = 0
	m.offset = 0
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	m.clampOffset()
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m Model) listHeight() int {
	// each module takes two lines
	return max(1, (m.height-chromeHeight)/2)
}

// PendingQuery is the text typed but not yet committed
func (m Model) PendingQuery() string {
	return m.query.Pending()
}

// CommittedQuery is the query the list is filtered by
func (m Model) CommittedQuery() string {
	return m.query.Committed()
}

// Visible returns the modules currently listed
func (m Model) Visible() []provider.Module {
	return m.visible
}

// Selected returns the module under the cursor
func (m Model) Selected() (provider.Module, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return provider.Module{}, false
	}
	return m.visible[m.cursor], true
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.site.Config.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n")
	if m.query.Dirty() {
		b.WriteString(m.styles.Pending.Render("tekan enter untuk mencari"))
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(m.styles.Empty.Render(web.EmptyStateMessage))
		b.WriteString("\n")
	} else {
		end := min(m.offset+m.listHeight(), len(m.visible))
		for i := m.offset; i < end; i++ {
			mod := m.visible[i]
			line := m.styles.Name.Render(mod.Name) + "\n  " + m.styles.Desc.Render(mod.Desc)
			if i == m.cursor {
				line = m.styles.Selected.Render("▸ "+mod.Name) + "\n  " + m.styles.Desc.Render(mod.Desc)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	footer := fmt.Sprintf("%d/%d modul", len(m.visible), len(m.modules))
	if mod, ok := m.Selected(); ok {
		footer = m.styles.ImportURL.Render(m.site.ImportURL(mod.Name, "", "")) + "  " + footer
	}
	b.WriteString(m.styles.Footer.Render(footer))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter cari · esc hapus/keluar · ↑/↓ pilih · ctrl+c keluar"))

	return b.String()
}
