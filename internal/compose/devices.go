package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ledbadge/internal/badge"
)

// ListFunc returns the devices the user can pick from
type ListFunc func(ctx context.Context) ([]badge.Device, error)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []badge.Device
	err     error
}

// devicesKeyMap defines key bindings for the device screen
type devicesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k devicesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k devicesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Rescan, k.Quit}}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device badge.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.Address
}

func (d deviceItem) Title() string {
	if d.device.Default {
		return d.device.Name + " ★"
	}
	return d.device.Name
}

func (d deviceItem) Description() string {
	parts := []string{string(d.device.Kind)}
	if d.device.Address != "" {
		parts = append(parts, d.device.Address)
	}
	if d.device.Details != "" {
		parts = append(parts, d.device.Details)
	}
	return strings.Join(parts, " • ")
}

// DevicesModel is the device selection screen
type DevicesModel struct {
	Scanning   bool
	DeviceList list.Model
	Selected   bool
	Err        error

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    devicesKeyMap

	list ListFunc
}

// NewDevicesModel creates the device screen
func NewDevicesModel(fn ListFunc) DevicesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(HighlightColor).
		BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(HighlightColor)

	deviceList := list.New([]list.Item{}, delegate, MinTerminalWidth-4, 12)
	deviceList.Title = "Displays"
	deviceList.SetShowStatusBar(false)
	deviceList.SetShowHelp(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := devicesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return DevicesModel{
		DeviceList: deviceList,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
		list:       fn,
	}
}

// Init starts scanning immediately
func (m DevicesModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scan,
		m.Spinner.Tick,
	)
}

func (m DevicesModel) scan() tea.Msg {
	if m.list == nil {
		return scanCompleteMsg{err: fmt.Errorf("no device sources configured")}
	}
	devices, err := m.list(context.Background())
	return scanCompleteMsg{devices: devices, err: err}
}

// Update handles messages and updates the model
func (m DevicesModel) Update(msg tea.Msg) (DevicesModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetSize(max(msg.Width-6, 20), max(msg.Height-8, 6))

	case scanStartMsg:
		m.Scanning = true

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{device: d}
		}
		return m, m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Scanning {
			return m, nil
		}
		if m.DeviceList.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, m.Keys.Enter):
				if m.DeviceList.SelectedItem() != nil {
					m.Selected = true
				}
				return m, nil
			case key.Matches(msg, m.Keys.Rescan):
				m.Err = nil
				return m, tea.Batch(
					m.DeviceList.SetItems(nil),
					func() tea.Msg { return scanStartMsg{} },
					m.scan,
					m.Spinner.Tick,
				)
			}
		}
	}

	if !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// SelectedDevice returns the chosen device, if any
func (m DevicesModel) SelectedDevice() (badge.Device, bool) {
	if !m.Selected {
		return badge.Device{}, false
	}
	item, ok := m.DeviceList.SelectedItem().(deviceItem)
	if !ok {
		return badge.Device{}, false
	}
	return item.device, true
}

// View renders the device screen content
func (m DevicesModel) View() string {
	var b strings.Builder

	switch {
	case m.Scanning:
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render(m.Spinner.View() + " Looking for displays"))
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Configured profiles, mDNS bridges and serial ports..."))
		b.WriteString("\n")

	case len(m.DeviceList.Items()) == 0:
		b.WriteString("\n")
		if m.Err != nil {
			b.WriteString(ErrorBoxStyle.Render(fmt.Sprintf("✗ Scan failed: %v", m.Err)))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("⚠ No displays found"))
		}
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Add a profile with 'ledbadge devices add'\n")
		b.WriteString("    • Plug the badge in over USB and rescan\n")
		b.WriteString("    • Start bridges with 'ledbadge serve --advertise'\n")

	default:
		b.WriteString(m.DeviceList.View())
	}

	return b.String()
}

// HelpView renders the key bindings for the footer
func (m DevicesModel) HelpView() string {
	return m.Help.View(m.Keys)
}
