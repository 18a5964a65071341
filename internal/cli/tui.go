package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lzmap/lzmap/pkg/preset"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PresetListModel - Interactive preset selection
// =============================================================================

// PresetListModel is the bubbletea model for interactive preset selection.
type PresetListModel struct {
	Presets  []preset.Preset
	Cursor   int
	Selected *preset.Preset
}

// NewPresetListModel creates a new preset list model.
func NewPresetListModel(presets []preset.Preset) PresetListModel {
	return PresetListModel{Presets: presets}
}

func (m PresetListModel) Init() tea.Cmd {
	return nil
}

func (m PresetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Presets)-1 {
				m.Cursor++
			}
		case "enter":
			p := m.Presets[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PresetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Preset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, p := range m.Presets {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		envs := "prod"
		if p.IncludeNonProdEnvironment {
			envs = "prod, nonprod"
		}

		rows = append(rows, []string{
			cursor, p.Name, envs, platformSummary(p), p.HubAddressSpace,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Preset", "Environments", "Platform", "Hub").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// platformSummary lists the optional platform services a preset enables.
func platformSummary(p preset.Preset) string {
	var parts []string
	if p.IncludeAppGateway {
		parts = append(parts, "appgw")
	}
	if p.IncludeFirewall {
		parts = append(parts, "firewall")
	}
	if p.IncludeBastion {
		parts = append(parts, "bastion")
	}
	if p.IncludeKeyVault {
		parts = append(parts, "keyvault")
	}
	if p.IncludeObservability {
		parts = append(parts, "observability")
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, ", ")
}
