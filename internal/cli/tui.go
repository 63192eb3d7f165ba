package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkoenig/boxtree/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// engineDescriptions explains each layout engine in one line.
var engineDescriptions = map[layout.Type]string{
	layout.TypeGrid:        "fixed column count, predictable rows",
	layout.TypeAspectRatio: "column count chosen to match the target ratio",
	layout.TypeFlowGrid:    "ratio-driven with title-aware widths and centering",
	layout.TypePermutation: "tries sibling orderings for the best fit",
	layout.TypePacking:     "word-wrapped leaf labels, square-ish groups",
	layout.TypeTreemap:     "area-proportional squarified partition",
}

// =============================================================================
// EnginePickerModel - Interactive layout engine selection
// =============================================================================

// EnginePickerModel is the bubbletea model for interactive engine selection.
type EnginePickerModel struct {
	Engines  []layout.Type
	Cursor   int
	Selected string
	quit     bool
}

// NewEnginePickerModel creates a picker with the cursor on current, when
// current names a known engine.
func NewEnginePickerModel(current string) EnginePickerModel {
	m := EnginePickerModel{Engines: layout.Types}
	for i, e := range m.Engines {
		if string(e) == current {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m EnginePickerModel) Init() tea.Cmd {
	return nil
}

func (m EnginePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Engines)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = string(m.Engines[m.Cursor])
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m EnginePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layout Engine"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, e := range m.Engines {
		cursor := "  "
		name := listNormalStyle.Render(string(e))
		if i == m.Cursor {
			cursor = "▸ "
			name = listSelectedStyle.Render(string(e))
		}
		b.WriteString(cursor + name)
		if desc := engineDescriptions[e]; desc != "" {
			b.WriteString("  " + listDimStyle.Render(desc))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// pickEngine runs the interactive engine picker and returns the chosen
// engine name, or an empty string when the user cancels.
func pickEngine(current string) (string, error) {
	program := tea.NewProgram(NewEnginePickerModel(current))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("engine picker: %w", err)
	}
	m, ok := final.(EnginePickerModel)
	if !ok {
		return "", nil
	}
	return m.Selected, nil
}
