package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-rag/internal/models"
	"pdf-rag/internal/rag"
)

// Querier is the TUI-facing subset of the RAG pipeline.
type Querier interface {
	Query(ctx context.Context, question string) (*models.PromptResponse, error)
}

// Model is the Bubble Tea model for the chat surface. The history is
// append-only and lives only for the session; each turn blocks until
// retrieval and answering finish, matching the synchronous pipeline.
type Model struct {
	service  Querier
	input    textinput.Model
	viewport viewport.Model
	messages []models.Message
	status   string
	ready    bool
}

func New(service Querier) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What is on your mind?"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, status: "Ask a question about the ingested document."}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := inputBoxStyle.GetFrameSize()
		_, hh := historyBoxStyle.GetFrameSize()
		vh := msg.Height - qh - hh - 3 // header + status + spacer
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-historyBoxStyle.GetHorizontalFrameSize())
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.messages = append(m.messages, models.Message{Role: models.RoleUser, Content: question})
			m.input.Reset()
			m.status = "Thinking..."

			// Synchronous turn: retrieval and answering complete before
			// the next input is accepted.
			resp, err := m.service.Query(context.Background(), question)
			answer := rag.RenderAnswer(resp, err)
			m.messages = append(m.messages, models.Message{Role: models.RoleAssistant, Content: answer})

			m.status = "Ready."
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("RAG Chatbot")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.messages) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("you") + "  " + msg.Content)
		default:
			b.WriteString(assistantStyle.Render("assistant") + "  " + msg.Content)
		}
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
