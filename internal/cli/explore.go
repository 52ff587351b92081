package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/explorer"
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/generate"
	"github.com/depscope/depscope/pkg/model"
)

// exploreCommand creates the interactive exploration command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		registry string
		version  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "explore <package>",
		Short: "Explore a dependency graph interactively",
		Long: `Explore opens a terminal UI seeded with the given package. Dependencies
are fetched lazily: expanding a node fetches only its direct dependencies,
so large graphs stay responsive. The visible graph can be narrowed with a
text filter at any time, including while fetches are in flight.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			backend := c.newBackend(cmd, noCache)
			defer backend.Close()

			source, err := c.newSource(registry, backend, c.config.TTL())
			if err != nil {
				return err
			}

			gen := generate.New(source)
			view := &programView{}
			controller := explorer.New(gen, filter.New(), view, explorer.Options{
				Logger: logger,
				LoadIndicator: func(active bool) {
					view.send(loadingMsg{active: active})
				},
			})

			m := newExploreModel(cmd.Context(), controller, source.Name(), args[0], version)
			p := tea.NewProgram(m, tea.WithAltScreen())
			view.attach(p)

			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&registry, "registry", "r", "", "package registry: npm, pypi, or crates (default from config)")
	cmd.Flags().StringVar(&version, "pkg-version", "", "package version (default: latest)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

// =============================================================================
// programView - explorer.View backed by a running bubbletea program
// =============================================================================

// Messages the controller pushes into the program.
type (
	graphMsg    struct{ snapshot model.Snapshot }
	selectMsg   struct{ ids []string }
	clearSelMsg struct{}
	centerMsg   struct{ ids []string }
	loadingMsg  struct{ active bool }
	opDoneMsg   struct{}
)

// programView forwards view dispatches as bubbletea messages. Dispatches
// that arrive before the program starts are dropped; the model renders the
// initial state itself.
type programView struct {
	mu sync.Mutex
	p  *tea.Program
}

func (v *programView) attach(p *tea.Program) {
	v.mu.Lock()
	v.p = p
	v.mu.Unlock()
}

func (v *programView) send(msg tea.Msg) {
	v.mu.Lock()
	p := v.p
	v.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (v *programView) Commit(g *model.Graph) {
	v.send(graphMsg{snapshot: model.Export(g)})
}

func (v *programView) Select(ids []string) {
	v.send(selectMsg{ids: append([]string(nil), ids...)})
}

func (v *programView) SelectAll(selected bool) {
	if !selected {
		v.send(clearSelMsg{})
	}
}

func (v *programView) Center(ids []string, _ explorer.CenterOpts) {
	v.send(centerMsg{ids: append([]string(nil), ids...)})
}

// =============================================================================
// exploreModel - the terminal UI
// =============================================================================

type exploreModel struct {
	ctx        context.Context
	controller *explorer.Controller
	registry   string

	rootName    string
	rootVersion string

	nodes    model.Snapshot
	selected map[string]bool
	cursor   int
	offset   int
	height   int

	filtering   bool
	filterInput string
	filterText  string

	loading bool
	busy    bool
	status  string
}

func newExploreModel(ctx context.Context, controller *explorer.Controller, registry, name, version string) exploreModel {
	return exploreModel{
		ctx:         ctx,
		controller:  controller,
		registry:    registry,
		rootName:    name,
		rootVersion: version,
		selected:    make(map[string]bool),
		height:      15,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.op(func() {
		m.controller.Start()
		m.controller.CreateNode(m.rootName, m.rootVersion)
	})
}

// op runs a controller operation off the UI goroutine. The controller
// reports back through the view, so the command itself carries no result.
func (m exploreModel) op(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return opDoneMsg{}
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case graphMsg:
		m.nodes = msg.snapshot
		m.clampCursor()
		return m, nil

	case selectMsg:
		for _, id := range msg.ids {
			m.selected[id] = true
		}
		return m, nil

	case clearSelMsg:
		m.selected = make(map[string]bool)
		return m, nil

	case centerMsg:
		m.moveCursorTo(msg.ids)
		return m, nil

	case loadingMsg:
		m.loading = msg.active
		return m, nil

	case opDoneMsg:
		m.busy = false
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filterText = m.filterInput
			m.busy = true
			text := m.filterInput
			return m, m.op(func() { m.controller.SetFilter(text) })
		case "esc":
			m.filtering = false
			m.filterInput = m.filterText
			return m, nil
		case "backspace":
			if len(m.filterInput) > 0 {
				m.filterInput = m.filterInput[:len(m.filterInput)-1]
			}
			return m, nil
		default:
			if msg.Type == tea.KeyRunes {
				m.filterInput += string(msg.Runes)
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}

	case "down", "j":
		if m.cursor < len(m.visibleNodes())-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "enter", " ":
		if m.busy {
			return m, nil
		}
		visible := m.visibleNodes()
		if m.cursor >= len(visible) {
			return m, nil
		}
		id := visible[m.cursor].ID
		m.busy = true
		return m, m.op(func() {
			m.controller.Select([]string{id})
			m.controller.ResolveNodes(m.ctx, []string{id})
		})

	case "a":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.op(func() { m.controller.ResolveGraph(m.ctx) })

	case "/":
		m.filtering = true
		m.filterInput = m.filterText

	case "x":
		if m.busy {
			return m, nil
		}
		m.filterText = ""
		m.filterInput = ""
		m.busy = true
		return m, m.op(func() {
			m.controller.Clear()
			m.controller.CreateNode(m.rootName, m.rootVersion)
		})
	}
	return m, nil
}

func (m *exploreModel) visibleNodes() []model.Node {
	out := make([]model.Node, 0, len(m.nodes.Nodes))
	for _, n := range m.nodes.Nodes {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

func (m *exploreModel) clampCursor() {
	visible := len(m.visibleNodes())
	if m.cursor >= visible {
		m.cursor = visible - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// moveCursorTo jumps the cursor to the first of the given IDs that is
// currently visible.
func (m *exploreModel) moveCursorTo(ids []string) {
	if len(ids) == 0 {
		return
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i, n := range m.visibleNodes() {
		if want[n.ID] {
			m.cursor = i
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
			return
		}
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("depscope · %s", m.registry)
	b.WriteString(StyleTitle.Render(title))
	if m.loading {
		b.WriteString("  " + StyleWarning.Render("resolving…"))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ expand  a expand all  / filter  x reset  q quit"))
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(StyleHighlight.Render("filter: ") + m.filterInput + StyleHighlight.Render("█"))
	} else if m.filterText != "" {
		b.WriteString(StyleDim.Render("filter: ") + StyleHighlight.Render(m.filterText))
	}
	b.WriteString("\n\n")

	visible := m.visibleNodes()
	end := m.offset + m.height
	if end > len(visible) {
		end = len(visible)
	}

	for i := m.offset; i < end; i++ {
		n := visible[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		var status string
		switch {
		case n.Error != "":
			status = styleIconError.Render(iconError)
		case n.Resolved:
			status = styleIconSuccess.Render(iconSuccess)
		default:
			status = StyleDim.Render("·")
		}

		line := fmt.Sprintf("%s%s %s", cursor, status, n.Label())
		style := listNormalStyle
		if i == m.cursor {
			style = listSelectedStyle
		} else if m.selected[n.ID] {
			style = StyleHighlight
		}
		b.WriteString(style.Render(line))

		if n.Error != "" {
			b.WriteString("  " + StyleDim.Render(n.Error))
		}
		b.WriteString("\n")
	}

	if len(visible) == 0 {
		b.WriteString(StyleDim.Render("  no packages match the current filter"))
		b.WriteString("\n")
	}

	edges := 0
	for _, e := range m.nodes.Edges {
		if !e.Hidden {
			edges++
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d nodes · %d edges",
		min(m.cursor+1, len(visible)), len(visible), len(visible), edges)))

	return b.String()
}

// List styles shared with the selection UI.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)
