package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	conversation "github.com/voicylabs/voicy-core/core"
	"github.com/voicylabs/voicy-core/core/backend"
	"github.com/voicylabs/voicy-core/core/events"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	latencyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	speakingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

type eventMsg struct {
	event events.Event
}

func waitForEvent(incoming chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-incoming}
	}
}

type model struct {
	client *conversation.Client
	events chan events.Event

	input   textinput.Model
	spinner spinner.Model

	transcript []backend.Message
	notice     string

	micEnabled   bool
	micEffective bool
	speaking     bool
	busy         bool
	playing      bool

	segmenterLoading bool
	segmenterErrored bool

	width  int
	height int
}

func initialModel(client *conversation.Client, incoming chan events.Event, micEnabled bool) model {
	input := textinput.New()
	input.Placeholder = "Type a message, or just speak"
	input.Prompt = "> "
	input.Focus()

	busySpinner := spinner.New()
	busySpinner.Spinner = spinner.Dot

	return model{
		client:           client,
		events:           incoming,
		input:            input,
		spinner:          busySpinner,
		micEnabled:       micEnabled,
		micEffective:     micEnabled,
		segmenterLoading: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.input.SetValue("")
		case "ctrl+t":
			m.micEnabled = !m.micEnabled
			m.client.SetMicEnabled(m.micEnabled)
		case "ctrl+s":
			m.client.StopPlayback()
		case "enter":
			if !m.busy {
				text := strings.TrimSpace(m.input.Value())
				if text != "" {
					m.client.SubmitText(text)
					m.input.SetValue("")
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		wasBusy := m.busy
		m = m.applyEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.events))
		if m.busy && !wasBusy {
			cmds = append(cmds, m.spinner.Tick)
		}

	case spinner.TickMsg:
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) applyEvent(event events.Event) model {
	switch typedEvent := event.(type) {
	case events.UserSpeechStarted:
		m.speaking = true
	case events.UserSpeechEnded:
		m.speaking = false
	case events.TurnSubmitted:
		m.busy = true
		m.notice = ""
	case events.TurnCompleted:
		m.transcript = m.client.Transcript()
	case events.TurnFailed:
		m.busy = false
	case events.PlaybackStarted:
		m.playing = true
	case events.PlaybackEnded:
		m.playing = false
		m.busy = false
	case events.MicStateChanged:
		m.micEnabled = typedEvent.UserEnabled
		m.micEffective = typedEvent.Effective
	case events.SegmenterStateChanged:
		m.segmenterLoading = typedEvent.Loading
		m.segmenterErrored = typedEvent.Errored
	case events.Notification:
		m.notice = typedEvent.Message
	}
	return m
}

func (m model) View() string {
	var view strings.Builder

	view.WriteString(titleStyle.Render("Voicy"))
	view.WriteString("\n\n")
	view.WriteString(m.transcriptView())

	if m.notice != "" {
		view.WriteString(noticeStyle.Render(m.notice))
		view.WriteString("\n")
	}

	if m.busy {
		view.WriteString(m.spinner.View())
		view.WriteString(statusStyle.Render("thinking..."))
		view.WriteString("\n")
	}

	view.WriteString("\n")
	view.WriteString(m.input.View())
	view.WriteString("\n")
	view.WriteString(m.statusView())

	return view.String()
}

func (m model) transcriptView() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var view strings.Builder
	for _, message := range m.transcript {
		label := userStyle.Render("you")
		if message.Role == backend.RoleAssistant {
			label = assistantStyle.Render("voicy")
		}

		line := fmt.Sprintf("%s  %s", label, message.Content)
		if message.Role == backend.RoleAssistant && message.Latency > 0 {
			line += latencyStyle.Render(fmt.Sprintf("  (%dms)", message.Latency))
		}

		view.WriteString(wordwrap.String(line, width-2))
		view.WriteString("\n")
	}
	if len(m.transcript) > 0 {
		view.WriteString("\n")
	}
	return view.String()
}

func (m model) statusView() string {
	mic := "mic off"
	switch {
	case m.segmenterErrored:
		mic = "voice unavailable"
	case m.segmenterLoading:
		mic = "loading voice detection..."
	case m.micEffective && m.speaking:
		mic = speakingStyle.Render("mic on, listening")
	case m.micEffective:
		mic = "mic on"
	case m.micEnabled && m.playing:
		mic = "mic muted while speaking"
	}

	return statusStyle.Render(fmt.Sprintf("%s · ctrl+t mic · ctrl+s stop · ctrl+c quit", mic))
}
