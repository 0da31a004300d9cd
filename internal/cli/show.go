package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// showCommand creates the show command for interactive tree browsing.
func (c *CLI) showCommand() *cobra.Command {
	var consolidate bool

	cmd := &cobra.Command{
		Use:   "show [tree.json]",
		Short: "Browse a history tree interactively",
		Long: `Browse a history tree interactively.

The show command opens a terminal browser over the tree's stable
identifiers. The selected identifier's version history is displayed with
release labels and grid coordinates. Use arrow keys or j/k to navigate and
q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(args[0], consolidate)
		},
	}

	cmd.Flags().BoolVar(&consolidate, "consolidate", false, "merge redundant no-change events before browsing")

	return cmd
}

func (c *CLI) runShow(input string, consolidate bool) error {
	if err := apperrors.ValidatePath(input); err != nil {
		return err
	}

	t, err := graphio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}
	if consolidate {
		t.Consolidate()
	}
	t.CalculateCoords()

	if t.NodeCount() == 0 {
		printWarning("Tree is empty")
		return nil
	}

	model := NewTreeModel(t)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// =============================================================================
// TreeModel - Interactive identifier browser
// =============================================================================

// TreeModel is the bubbletea model for browsing a tree's identifiers.
type TreeModel struct {
	Tree   *lineage.Tree
	IDs    []string // row order, top to bottom
	Cursor int
	Height int
	Offset int
}

// NewTreeModel creates a browser model over a laid-out tree.
func NewTreeModel(t *lineage.Tree) TreeModel {
	return TreeModel{
		Tree:   t,
		IDs:    t.Rows(),
		Height: 15,
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.IDs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	s := StyleTitle.Render("History browser") + "\n"
	s += listDimStyle.Render(fmt.Sprintf("%d identifiers · %d releases", len(m.IDs), len(m.Tree.Labels()))) + "\n\n"

	end := m.Offset + m.Height
	if end > len(m.IDs) {
		end = len(m.IDs)
	}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = listSelectedStyle.Render("> ")
			style = listSelectedStyle
		}
		s += cursor + style.Render(m.IDs[i]) + "\n"
	}

	if len(m.IDs) > 0 {
		s += "\n" + m.detailView(m.IDs[m.Cursor]) + "\n"
	}
	s += listDimStyle.Render("↑/↓ navigate · q quit")
	return s
}

// detailView renders the selected identifier's observations as a table.
func (m TreeModel) detailView(stableID string) string {
	rows := [][]string{}
	for _, r := range m.Tree.Releases() {
		n, ok := m.Tree.Node(stableID, r.Instance)
		if !ok {
			continue
		}
		coord, _ := m.Tree.Coord(n)
		rows = append(rows, []string{
			r.Label,
			strconv.Itoa(n.Version),
			n.Instance,
			fmt.Sprintf("(%d, %d)", coord.X, coord.Y),
		})
	}

	tbl := table.New().
		Headers("release", "version", "instance", "coord").
		Rows(rows...).
		BorderStyle(listDimStyle)
	return tbl.Render()
}
