package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse a workflow document interactively",
		Long: `Browse opens an interactive view of the document's states. Navigate
with the arrow keys; the detail pane shows the selected state's
transitions, guards, and processors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := workflow.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}

			model := newStateListModel(doc)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// stateListModel is the bubbletea model for browsing a document's states.
type stateListModel struct {
	doc    *workflow.Document
	ids    []string
	cursor int
	height int
	offset int
}

func newStateListModel(doc *workflow.Document) stateListModel {
	return stateListModel{
		doc:    doc,
		ids:    doc.Configuration.StateIDs(),
		height: 15,
	}
}

func (m stateListModel) Init() tea.Cmd {
	return nil
}

func (m stateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.ids)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m stateListModel) View() string {
	var b strings.Builder

	title := m.doc.Configuration.Name
	if title == "" {
		title = m.doc.ID
	}
	b.WriteString(StyleTitle.Render("Workflow: " + title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.ids))
	for i := m.offset; i < end; i++ {
		id := m.ids[i]
		line := "  " + id
		if i == m.cursor {
			line = "▸ " + id
		}

		var marks []string
		if id == m.doc.Configuration.InitialState {
			marks = append(marks, "initial")
		}
		if len(m.doc.Configuration.States[id].Transitions) == 0 {
			marks = append(marks, "terminal")
		}
		if len(marks) > 0 {
			line += listDimStyle.Render("  (" + strings.Join(marks, ", ") + ")")
		}

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	return b.String()
}

// detailView renders the selected state's transitions.
func (m stateListModel) detailView() string {
	if len(m.ids) == 0 {
		return listDimStyle.Render("no states")
	}

	id := m.ids[m.cursor]
	state := m.doc.Configuration.States[id]

	var b strings.Builder
	if state.Description != "" {
		b.WriteString(listDimStyle.Render(state.Description))
		b.WriteString("\n")
	}

	if len(state.Transitions) == 0 {
		b.WriteString(listDimStyle.Render("no outgoing transitions"))
		return b.String()
	}

	for i, t := range state.Transitions {
		name := t.Name
		if name == "" {
			name = workflow.TransitionID(id, i)
		}
		line := fmt.Sprintf("  %s %s %s", name, iconArrow, t.Next)
		if t.Manual {
			line += listDimStyle.Render("  manual")
		}
		if t.Disabled {
			line += listDimStyle.Render("  disabled")
		}
		if t.Criterion != nil {
			line += listDimStyle.Render(fmt.Sprintf("  if %s %s %v",
				t.Criterion.Field, t.Criterion.Operator, t.Criterion.Value))
		}
		if n := len(t.Processors); n > 0 {
			line += listDimStyle.Render(fmt.Sprintf("  %d processor(s)", n))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
