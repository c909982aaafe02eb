package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DeviceListModel - Interactive device selection
// =============================================================================

// DeviceEntry is one selectable device from a manifest.
type DeviceEntry struct {
	Path       string
	Compatible string
	Available  bool
}

// DeviceListModel is the bubbletea model for interactive device selection.
type DeviceListModel struct {
	Devices  []DeviceEntry
	Cursor   int
	Selected *DeviceEntry
}

// NewDeviceListModel creates a new device list model.
func NewDeviceListModel(devices []DeviceEntry) DeviceListModel {
	return DeviceListModel{Devices: devices}
}

func (m DeviceListModel) Init() tea.Cmd {
	return nil
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Devices)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Devices[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m DeviceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Device"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, d := range m.Devices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		var status string
		if d.Available {
			status = styleIconSuccess.Render("*")
		} else {
			status = StyleWarning.Render("!")
		}

		line := fmt.Sprintf("%s%s %-30s  %s", cursor, status, d.Path, listDimStyle.Render(d.Compatible))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if !d.Available {
			b.WriteString(listDimStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s available   %s disabled\n",
		styleIconSuccess.Render("*"), StyleWarning.Render("!")))

	return b.String()
}

// pickDevice runs the interactive device picker and returns the chosen
// device path, or an empty string if the user quit without selecting.
func pickDevice(devices []DeviceEntry) (string, error) {
	model := NewDeviceListModel(devices)
	out, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	final, ok := out.(DeviceListModel)
	if !ok || final.Selected == nil {
		return "", nil
	}
	return final.Selected.Path, nil
}
