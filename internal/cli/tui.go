package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/pipeline"
)

// fontStep is how far up/down moves the font size.
const fontStep = 2

var (
	inputStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	cursorStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// layoutFunc computes the layout of text at fontSize (0 means the slot size).
type layoutFunc func(text string, fontSize float64) (layout.Result, error)

// =============================================================================
// LivePreviewModel - Interactive name editing with live layout
// =============================================================================

// LivePreviewModel is the bubbletea model behind "preview --interactive".
// Every keystroke recomputes the layout so wrapping and shrinking are
// visible while typing; Enter accepts the current name and font size.
type LivePreviewModel struct {
	TemplateID   string
	Text         string
	FontSize     float64 // 0 until the user changes it
	SlotFontSize float64
	MaxLen       int

	Layout   layout.Result
	Err      error
	Accepted bool

	compute layoutFunc
}

// NewLivePreviewModel creates a model and computes the initial layout.
func NewLivePreviewModel(templateID, text string, fontSize, slotFontSize float64, maxLen int, compute layoutFunc) LivePreviewModel {
	if maxLen <= 0 {
		maxLen = pipeline.DefaultMaxTextLen
	}
	m := LivePreviewModel{
		TemplateID:   templateID,
		Text:         pipeline.Truncate(text, maxLen),
		FontSize:     fontSize,
		SlotFontSize: slotFontSize,
		MaxLen:       maxLen,
		compute:      compute,
	}
	m.relayout()
	return m
}

func (m LivePreviewModel) Init() tea.Cmd {
	return nil
}

func (m LivePreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.Err == nil {
			m.Accepted = true
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if _, size := utf8.DecodeLastRuneInString(m.Text); size > 0 {
			m.Text = m.Text[:len(m.Text)-size]
		}
	case tea.KeyCtrlU:
		m.Text = ""
	case tea.KeyUp:
		m.FontSize = clampFont(m.effectiveFontSize() + fontStep)
	case tea.KeyDown:
		m.FontSize = clampFont(m.effectiveFontSize() - fontStep)
	case tea.KeyCtrlR:
		m.FontSize = 0
	case tea.KeySpace:
		m.insert(" ")
	case tea.KeyRunes:
		m.insert(string(key.Runes))
	default:
		return m, nil
	}
	m.relayout()
	return m, nil
}

func (m *LivePreviewModel) insert(s string) {
	m.Text = pipeline.Truncate(m.Text+s, m.MaxLen)
}

func (m LivePreviewModel) effectiveFontSize() float64 {
	if m.FontSize > 0 {
		return m.FontSize
	}
	return m.SlotFontSize
}

func clampFont(size float64) float64 {
	return min(max(size, pipeline.MinFontSize), pipeline.MaxFontSize)
}

func (m *LivePreviewModel) relayout() {
	m.Layout, m.Err = m.compute(m.Text, m.FontSize)
}

func (m LivePreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Live Preview · " + m.TemplateID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to edit  ↑/↓ font size  ctrl+r reset  ⏎ render  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(inputStyle.Render(m.Text) + cursorStyle.Render("▏"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d/%d", utf8.RuneCountInString(m.Text), m.MaxLen)))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(errorStyle.Render(iconError + " " + errors.UserMessage(m.Err)))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.Layout.Lines) == 0 {
		b.WriteString(listDimStyle.Render("no name, the template is drawn without text"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(layoutTable(m.Layout).Render())
	b.WriteString("\n")
	b.WriteString(layoutStats(m.Layout, false))
	if m.FontSize > 0 && m.Layout.FontSize < m.FontSize {
		b.WriteString(listDimStyle.Render(fmt.Sprintf(" · shrunk from %vpx", m.FontSize)))
	}
	b.WriteString("\n")
	return b.String()
}

// layoutTable renders one row per wrapped line with its baseline position.
func layoutTable(res layout.Result) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(res.Lines))
	for i, line := range res.Lines {
		rows[i] = []string{
			fmt.Sprint(i + 1),
			line,
			fmt.Sprintf("%v", res.X),
			fmt.Sprintf("%v", res.LineY[i]),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Line", "X", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return StyleValue
			default:
				return StyleNumber
			}
		})
}
