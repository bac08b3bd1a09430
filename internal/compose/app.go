package compose

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/ui"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDevices Screen = "devices"
	ScreenEditor  Screen = "editor"
	ScreenResult  Screen = "result"
)

// OpenFunc connects to a device. The returned closer is called when the
// user leaves the device or quits.
type OpenFunc func(ctx context.Context, d badge.Device) (*badge.Service, io.Closer, error)

// Options wires the composer to device discovery and sinks
type Options struct {
	List ListFunc
	Open OpenFunc
	// Device skips the device screen when set
	Device *badge.Device
}

type openedMsg struct {
	device  badge.Device
	service *badge.Service
	closer  io.Closer
	err     error
}

// resultKeyMap defines key bindings for the result screen
type resultKeyMap struct {
	Again   key.Binding
	Devices key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k resultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Again, k.Devices, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k resultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Again, k.Devices, k.Quit}}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DevicesModel DevicesModel
	EditorModel  EditorModel

	// Shared application state
	Device    *badge.Device
	LastAck   string
	LastError error
	Sent      int

	Width  int
	Height int

	Help       help.Model
	ResultKeys resultKeyMap

	opts   Options
	closer io.Closer
}

// NewAppModel creates the composer, starting at device selection unless
// opts.Device is set
func NewAppModel(opts Options) AppModel {
	m := AppModel{
		CurrentScreen: ScreenDevices,
		DevicesModel:  NewDevicesModel(opts.List),
		Help:          help.New(),
		ResultKeys: resultKeyMap{
			Again:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit again")),
			Devices: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "devices")),
			Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		opts: opts,
	}
	if opts.Device != nil {
		d := *opts.Device
		m.Device = &d
	}
	return m
}

// Init opens the preselected device or starts the device scan
func (m AppModel) Init() tea.Cmd {
	if m.Device != nil {
		return m.open(*m.Device)
	}
	return m.DevicesModel.Init()
}

func (m AppModel) open(d badge.Device) tea.Cmd {
	openFn := m.opts.Open
	return func() tea.Msg {
		if openFn == nil {
			return openedMsg{device: d, err: fmt.Errorf("no sink opener configured")}
		}
		svc, closer, err := openFn(context.Background(), d)
		return openedMsg{device: d, service: svc, closer: closer, err: err}
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DevicesModel, _ = m.DevicesModel.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.release()
			return m, tea.Quit
		}

	case openedMsg:
		if msg.err != nil {
			m.LastError = msg.err
			m.LastAck = ""
			m.CurrentScreen = ScreenResult
			return m, nil
		}
		d := msg.device
		m.Device = &d
		m.closer = msg.closer
		m.EditorModel = NewEditorModel(d, msg.service)
		m.CurrentScreen = ScreenEditor
		return m, m.EditorModel.Init()

	case sentMsg:
		m.EditorModel, _ = m.EditorModel.Update(msg)
		m.LastAck = msg.ack
		m.LastError = msg.err
		if msg.err == nil {
			m.Sent++
		}
		m.CurrentScreen = ScreenResult
		return m, nil
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDevices:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.DevicesModel.Scanning &&
			key.Matches(keyMsg, m.DevicesModel.Keys.Quit) &&
			m.DevicesModel.DeviceList.FilterState() == list.Unfiltered {
			return m, tea.Quit
		}
		m.DevicesModel, cmd = m.DevicesModel.Update(msg)
		if d, ok := m.DevicesModel.SelectedDevice(); ok {
			m.DevicesModel.Selected = false
			return m, m.open(d)
		}

	case ScreenEditor:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.EditorModel.Keys.Back) && !m.EditorModel.Sending {
			return m.toDevices()
		}
		m.EditorModel, cmd = m.EditorModel.Update(msg)

	case ScreenResult:
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(keyMsg, m.ResultKeys.Again):
			if m.EditorModel.service == nil {
				return m.toDevices()
			}
			m.CurrentScreen = ScreenEditor
			return m, m.EditorModel.Init()
		case key.Matches(keyMsg, m.ResultKeys.Devices):
			return m.toDevices()
		case key.Matches(keyMsg, m.ResultKeys.Quit):
			m.release()
			return m, tea.Quit
		}
	}

	return m, cmd
}

// toDevices closes the current device and rescans
func (m AppModel) toDevices() (tea.Model, tea.Cmd) {
	m.release()
	m.Device = nil
	m.EditorModel = EditorModel{}
	m.CurrentScreen = ScreenDevices
	m.DevicesModel = NewDevicesModel(m.opts.List)
	if m.Width > 0 {
		m.DevicesModel, _ = m.DevicesModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
	}
	return m, m.DevicesModel.Init()
}

// release closes the open device, if any
func (m *AppModel) release() {
	if m.closer != nil {
		_ = m.closer.Close()
		m.closer = nil
	}
}

// View renders the current screen
func (m AppModel) View() string {
	device := ""
	if m.Device != nil {
		device = m.Device.String()
	}

	switch m.CurrentScreen {
	case ScreenDevices:
		return RenderApplicationContainer(m.DevicesModel.View(), m.DevicesModel.HelpView(), device, m.Width, m.Height)
	case ScreenEditor:
		return RenderApplicationContainer(m.EditorModel.View(), m.EditorModel.HelpView(), device, m.Width, m.Height)
	case ScreenResult:
		return RenderApplicationContainer(m.renderResult(), m.Help.View(m.ResultKeys), device, m.Width, m.Height)
	default:
		return "Unknown screen"
	}
}

// renderResult renders the outcome of the last send or open
func (m AppModel) renderResult() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.LastError == nil {
		b.WriteString(SuccessBoxStyle.Render("✓ " + m.LastAck))
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d message(s) sent this session", m.Sent)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(ErrorBoxStyle.Render(fmt.Sprintf("✗ %s\n\n%v", ui.FailureTitle(m.LastError), m.LastError)))
	b.WriteString("\n\n")
	if hints := ui.Troubleshooting(m.LastError); len(hints) > 0 {
		b.WriteString("  Troubleshooting:\n")
		for _, h := range hints {
			b.WriteString("    • " + h + "\n")
		}
	}
	return b.String()
}
