// Package tui is the interactive chat view over an ingested collection.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
)

// ChatPort is the TUI-facing subset of the session.
type ChatPort interface {
	Ask(ctx context.Context, query string) (string, []domain.RetrievalResult, error)
	Stats(ctx context.Context) (domain.CollectionStats, error)
}

type turn struct {
	question string
	answer   string
	sources  []domain.RetrievalResult
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	session  ChatPort
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	history  []turn
	status   string
	ready    bool
}

// New creates a new chat model. timeout bounds each answer request.
func New(session ChatPort, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := "Documents loaded. Ask away."
	if stats, err := session.Stats(context.Background()); err == nil {
		status = fmt.Sprintf("Collection %s holds %d chunks. Ask away.", stats.Name, stats.Count)
	}
	return Model{session: session, timeout: timeout, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header + status + input box + spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.status = "Thinking..."
				ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
				answer, sources, err := m.session.Ask(ctx, q)
				cancel()
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.history = append(m.history, turn{question: q, answer: answer, sources: sources})
					m.status = fmt.Sprintf("Answered with %d sources.", len(sources))
					m.input.SetValue("")
				}
				m.viewport.SetContent(m.renderHistory())
				m.viewport.GotoBottom()
				return m, nil
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, t := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + t.question))
		b.WriteString("\n")
		b.WriteString(t.answer)
		if len(t.sources) > 0 {
			b.WriteString("\n")
			b.WriteString(sourceHeaderStyle.Render("Sources:"))
			for j, s := range t.sources {
				b.WriteString(fmt.Sprintf("\n  %d. (distance %.4f) %s", j+1, s.Distance, snippet(s.Text, 200)))
				if src, ok := s.Metadata["source"]; ok {
					b.WriteString(sourceMetaStyle.Render("  [" + src.String() + "]"))
				}
			}
		}
	}
	return b.String()
}

func snippet(text string, n int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

var (
	chatBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	sourceMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
