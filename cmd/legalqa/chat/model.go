package chatcmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/pkg/cliui"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// asker is the part of the API client the TUI uses.
type asker interface {
	Ask(ctx context.Context, question string) (*api.AskResponse, error)
}

type turn struct {
	question string
	answer   string
	err      error
}

// answerMsg carries the result of one Ask call back into Update.
type answerMsg struct {
	question string
	resp     *api.AskResponse
	err      error
}

type model struct {
	ctx    context.Context
	client asker
	target string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	turns   []turn
	waiting bool
	ready   bool
	width   int
}

func newModel(ctx context.Context, client asker, target string) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Posez votre question et appuyez sur Entrée"
	ti.CharLimit = 1000
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return model{
		ctx:      ctx,
		client:   client,
		target:   target,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Ask(m.ctx, question)
		return answerMsg{question: question, resp: resp, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, frame := inputBoxStyle.GetFrameSize()
		// header, input box and status line
		reserved := 2 + 1 + frame + 1
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.turns = append(m.turns, turn{question: question})
			m.refresh()
			return m, tea.Batch(m.ask(question), m.spinner.Tick)
		}

	case answerMsg:
		m.waiting = false
		if n := len(m.turns); n > 0 && m.turns[n-1].question == msg.question {
			if msg.err != nil {
				m.turns[n-1].err = msg.err
			} else {
				m.turns[n-1].answer = msg.resp.Answer
			}
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m model) transcript() string {
	if len(m.turns) == 0 {
		return statusStyle.Render("Aucune question pour l'instant.")
	}

	var b strings.Builder
	for _, t := range m.turns {
		b.WriteString(userStyle.Render("Vous> "))
		b.WriteString(t.question)
		b.WriteString("\n")

		switch {
		case t.err != nil:
			b.WriteString(errorStyle.Render("Erreur: " + t.err.Error()))
			b.WriteString("\n\n")
		case t.answer != "":
			rendered, err := cliui.RenderMarkdown(t.answer, max(20, m.width-4))
			if err != nil {
				rendered = t.answer + "\n"
			}
			b.WriteString(rendered)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m model) View() string {
	header := headerStyle.Render("legalqa") + " " + targetStyle.Render(m.target)

	status := statusStyle.Render("entrée: envoyer · pgup/pgdown: défiler · esc: quitter")
	if m.waiting {
		status = m.spinner.View() + " " + statusStyle.Render("Recherche dans le Code du travail...")
	}

	return header + "\n\n" +
		m.viewport.View() + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		status
}
