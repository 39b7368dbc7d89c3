package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cellplace/pkg/geom"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)

// =============================================================================
// Rows
// =============================================================================

// inspectRow is one placed cell as shown by inspect.
type inspectRow struct {
	Order int // commit position, 0-based
	Cell  *netlist.Cell
	At    geom.Point
}

// newInspectRows joins the layout with the netlist, in commit order.
func newInspectRows(nl *netlist.Netlist, l layout.Layout) ([]inspectRow, error) {
	rows := make([]inspectRow, 0, len(l.Cells))
	for i, pc := range l.Cells {
		c, ok := nl.Lookup(pc.Name)
		if !ok {
			return nil, fmt.Errorf("layout cell %q is not in the netlist", pc.Name)
		}
		rows = append(rows, inspectRow{Order: i, Cell: c, At: geom.Point{X: pc.X, Y: pc.Y}})
	}
	return rows, nil
}

// sortMode selects the row order in the inspect view.
type sortMode int

const (
	sortCommit sortMode = iota
	sortName
	sortDegree
	numSortModes
)

func (s sortMode) String() string {
	switch s {
	case sortName:
		return "name"
	case sortDegree:
		return "degree"
	}
	return "commit order"
}

func sortRows(rows []inspectRow, mode sortMode) {
	slices.SortStableFunc(rows, func(a, b inspectRow) int {
		switch mode {
		case sortName:
			return strings.Compare(a.Cell.Name, b.Cell.Name)
		case sortDegree:
			if c := cmp.Compare(b.Cell.Degree(), a.Cell.Degree()); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Order, b.Order)
	})
}

// =============================================================================
// InspectModel - Interactive placement browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a placement.
type InspectModel struct {
	Title  string
	Rows   []inspectRow
	Cursor int
	Offset int
	Height int
	Detail bool
	Sort   sortMode

	netlist *netlist.Netlist
	pos     map[int]geom.Point
}

// NewInspectModel creates a model over the placed cells of nl.
func NewInspectModel(title string, nl *netlist.Netlist, rows []inspectRow) InspectModel {
	pos := make(map[int]geom.Point, len(rows))
	for _, r := range rows {
		pos[r.Cell.ID] = r.At
	}
	return InspectModel{
		Title:   title,
		Rows:    rows,
		Height:  15,
		netlist: nl,
		pos:     pos,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		case "enter", "tab":
			m.Detail = !m.Detail
		case "s":
			m.resort()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		if m.Detail {
			m.Height = max(msg.Height/2-4, 5)
		}
		m.clampOffset()
	}
	return m, nil
}

func (m *InspectModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	m.clampOffset()
}

func (m *InspectModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// resort switches to the next sort mode and keeps the cursor on the same cell.
func (m *InspectModel) resort() {
	if len(m.Rows) == 0 {
		return
	}
	current := m.Rows[m.Cursor].Cell.ID
	m.Sort = (m.Sort + 1) % numSortModes
	sortRows(m.Rows, m.Sort)
	for i, r := range m.Rows {
		if r.Cell.ID == current {
			m.Cursor = i
			break
		}
	}
	m.Offset = 0
	m.clampOffset()
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s sort  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(cellTable(m.Rows[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] sorted by %s", m.Cursor+1, len(m.Rows), m.Sort)))

	if m.Detail && len(m.Rows) > 0 {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(cellDetail(m.netlist, m.pos, m.Rows[m.Cursor].Cell)))
	}
	return b.String()
}

// =============================================================================
// Rendering helpers
// =============================================================================

// cellTable renders rows as a lipgloss table. cursor is relative to rows;
// pass -1 for no selection.
func cellTable(rows []inspectRow, cursor int) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		data[i] = []string{
			marker,
			fmt.Sprint(r.Order + 1),
			r.Cell.Name,
			fmt.Sprint(r.At.X),
			fmt.Sprint(r.At.Y),
			fmt.Sprintf("%d×%d", r.Cell.Width, r.Cell.Height),
			fmt.Sprint(len(r.Cell.Pins)),
			fmt.Sprint(r.Cell.Degree()),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "#", "Cell", "X", "Y", "Size", "Pins", "Degree").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorText)
		})
	return t.Render()
}

// cellDetail describes the pins and connections of c. Pin positions are
// absolute; each connection shows the Manhattan distance between its pins.
func cellDetail(nl *netlist.Netlist, pos map[int]geom.Point, c *netlist.Cell) string {
	var b strings.Builder
	at := pos[c.ID]
	fmt.Fprintf(&b, "%s at %s, %d×%d\n", StyleHighlight.Render(c.Name), at, c.Width, c.Height)

	if len(c.Pins) == 0 {
		b.WriteString(listDimStyle.Render("no pins"))
		return b.String()
	}

	total := 0
	for _, p := range c.Pins {
		fmt.Fprintf(&b, "\n%s %s", StyleValue.Render(p.Name), listDimStyle.Render(at.Add(p.Offset).String()))
		for _, ci := range p.Conns {
			conn := c.Connections[ci]
			peer := nl.Cell(conn.Peer)
			remote := peer.Pins[conn.Remote]
			line := fmt.Sprintf("  %s %s.%s", iconArrow, peer.Name, remote.Name)
			if peerAt, ok := pos[peer.ID]; ok {
				d := geom.Manhattan(at.Add(p.Offset), peerAt.Add(remote.Offset))
				total += d
				line += listDimStyle.Render(fmt.Sprintf("  len %d", d))
			}
			b.WriteString("\n" + line)
		}
	}
	fmt.Fprintf(&b, "\n\n%s %d", listDimStyle.Render("connection length:"), total)
	return b.String()
}
