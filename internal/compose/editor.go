package compose

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/uniseg"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/display"
)

// sentMsg carries the outcome of a send
type sentMsg struct {
	ack string
	err error
}

// editorKeyMap defines key bindings for the editor
type editorKeyMap struct {
	Send      key.Binding
	NextMode  key.Binding
	PrevMode  key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Flashing  key.Binding
	Border    key.Binding
	Inverted  key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NextMode, k.Faster, k.Slower, k.Flashing, k.Border, k.Inverted, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Back, k.Quit},
		{k.NextMode, k.PrevMode, k.Faster, k.Slower},
		{k.Flashing, k.Border, k.Inverted},
	}
}

// EditorModel is the message editor screen
type EditorModel struct {
	Device  badge.Device
	Text    textinput.Model
	Mode    int // index into display.ModeNames()
	Speed   int
	Effects display.Effects

	// Err is the validation error of the current input, nil when valid
	Err     error
	Sending bool

	Spinner spinner.Model
	Help    help.Model
	Keys    editorKeyMap

	service *badge.Service
	modes   []string
}

// NewEditorModel creates an editor bound to service
func NewEditorModel(device badge.Device, service *badge.Service) EditorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "HELLO"
	ti.Prompt = "› "
	ti.Width = 40
	// No CharLimit: textinput counts runes, the validator counts graphemes.
	ti.Focus()

	keys := editorKeyMap{
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NextMode: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
		PrevMode: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev mode")),
		Faster:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "faster")),
		Slower:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "slower")),
		Flashing: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "flashing")),
		Border:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "border")),
		Inverted: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "inverted")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "devices")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}

	m := EditorModel{
		Device:  device,
		Text:    ti,
		Speed:   int(display.MaxSpeed+display.MinSpeed) / 2,
		Spinner: s,
		Help:    help.New(),
		Keys:    keys,
		service: service,
		modes:   display.ModeNames(),
	}
	m.Err = m.validate()
	return m
}

// Init starts the cursor blinking
func (m EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

// Request returns the message as currently entered
func (m EditorModel) Request() display.Request {
	return display.NewRequest(m.Text.Value(), float64(m.Speed), m.modes[m.Mode], m.Effects.Names()...)
}

func (m EditorModel) validate() error {
	_, err := m.service.Validator().ValidateRequest(m.Request())
	return err
}

func (m EditorModel) send() tea.Cmd {
	req := m.Request()
	svc := m.service
	return func() tea.Msg {
		ack, err := svc.Submit(context.Background(), req)
		return sentMsg{ack: ack, err: err}
	}
}

// Update handles messages and updates the model
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Sending {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case sentMsg:
		m.Sending = false
		return m, nil

	case tea.KeyMsg:
		if m.Sending {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.Keys.Send):
			if m.Err != nil {
				return m, nil
			}
			m.Sending = true
			return m, tea.Batch(m.send(), m.Spinner.Tick)
		case key.Matches(msg, m.Keys.NextMode):
			m.Mode = (m.Mode + 1) % len(m.modes)
		case key.Matches(msg, m.Keys.PrevMode):
			m.Mode = (m.Mode + len(m.modes) - 1) % len(m.modes)
		case key.Matches(msg, m.Keys.Faster):
			if m.Speed < int(display.MaxSpeed) {
				m.Speed++
			}
		case key.Matches(msg, m.Keys.Slower):
			if m.Speed > int(display.MinSpeed) {
				m.Speed--
			}
		case key.Matches(msg, m.Keys.Flashing):
			m.Effects ^= display.EffectFlashing
		case key.Matches(msg, m.Keys.Border):
			m.Effects ^= display.EffectBorder
		case key.Matches(msg, m.Keys.Inverted):
			m.Effects ^= display.EffectInverted
		default:
			m.Text, cmd = m.Text.Update(msg)
		}
		m.Err = m.validate()
		return m, cmd
	}

	m.Text, cmd = m.Text.Update(msg)
	return m, cmd
}

// View renders the editor content
func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Compose a message"))
	b.WriteString("\n")

	limit := "no limit"
	if n := m.service.Validator().Limit(); n > 0 {
		limit = fmt.Sprintf("%d/%d", uniseg.GraphemeClusterCount(m.Text.Value()), n)
	}
	b.WriteString(LabelStyle.Render("Text") + m.Text.View() + "  " + SubtitleStyle.Render(limit))
	b.WriteString("\n\n")

	modes := make([]string, len(m.modes))
	for i, name := range m.modes {
		if i == m.Mode {
			modes[i] = ActiveOptionStyle.Render("[" + name + "]")
		} else {
			modes[i] = InactiveOptionStyle.Render(name)
		}
	}
	b.WriteString(LabelStyle.Render("Mode") + strings.Join(modes, " "))
	b.WriteString("\n")

	bar := strings.Repeat("▮", m.Speed+1) + strings.Repeat("▯", int(display.MaxSpeed)-m.Speed)
	b.WriteString(LabelStyle.Render("Speed") + ValueStyle.Render(strconv.Itoa(m.Speed)) + " " + ActiveOptionStyle.Render(bar))
	b.WriteString("\n")

	fx := make([]string, 0, 3)
	for _, name := range display.EffectNames() {
		e, _ := display.ParseEffect(name)
		if m.Effects.Has(e) {
			fx = append(fx, ActiveOptionStyle.Render("["+name+"]"))
		} else {
			fx = append(fx, InactiveOptionStyle.Render(name))
		}
	}
	b.WriteString(LabelStyle.Render("Effects") + strings.Join(fx, " "))
	b.WriteString("\n\n")

	text := m.Text.Value()
	if text == "" {
		text = " "
	}
	b.WriteString(LabelStyle.Render("Preview") + PreviewStyle.Render(text))
	b.WriteString("\n\n")

	switch {
	case m.Sending:
		b.WriteString(m.Spinner.View() + " Sending to " + m.Device.Name + "...")
	case m.Err != nil:
		b.WriteString(StatusErrorStyle.Render("✗ " + m.Err.Error()))
	default:
		b.WriteString(StatusOKStyle.Render("✓ Ready to send"))
	}
	b.WriteString("\n")

	return b.String()
}

// HelpView renders the key bindings for the footer
func (m EditorModel) HelpView() string {
	return m.Help.View(m.Keys)
}
