// internal/tui/tui.go
// Package tui provides the interactive terminal interface for arxa.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/memory"
	"github.com/arxa-ai/arxa/internal/pipeline"
	"github.com/arxa-ai/arxa/internal/providerfactory"
	"github.com/arxa-ai/arxa/internal/providers"
	"github.com/arxa-ai/arxa/internal/search"
	"github.com/arxa-ai/arxa/internal/tools"
	"github.com/arxa-ai/arxa/internal/util"
)

// Config represents the shared application configuration for the TUI.
type Config = appconfig.Config

// Host represents a configured host entry within the application configuration.
type Host = appconfig.Host

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewHostSelector is the state where the user selects a host.
	viewHostSelector viewState = iota
	// viewChat is the state where the user is talking to the assistant.
	viewChat
)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx          context.Context
	config       *Config
	conversation *memory.Log

	state        viewState
	isLoading    bool
	err          error
	hostList     list.Model
	textArea     textarea.Model
	viewport     viewport.Model
	spinner      spinner.Model
	responseBuf  strings.Builder
	stageLabel   string
	selectedHost Host

	provider     providers.CompletionProvider
	orchestrator *pipeline.Orchestrator

	width, height    int
	program          *tea.Program
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *Config, conversation *memory.Log) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask about a paper, a theorem, a field..."
	ta.Focus()
	ta.Prompt = "Ask Anything: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	hostItems := make([]list.Item, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		hostItems[i] = item{title: h.Name, desc: h.URL}
	}
	hostList := list.New(hostItems, list.NewDefaultDelegate(), 0, 0)
	hostList.Title = "Select a Host"

	vp := viewport.New(100, 5)

	return &model{
		ctx:          ctx,
		config:       cfg,
		conversation: conversation,
		state:        viewHostSelector,
		spinner:      s,
		textArea:     ta,
		hostList:     hostList,
		viewport:     vp,
	}
}

// item represents a selectable item in a Bubble Tea list.
type item struct {
	title string
	desc  string
}

func (i item) Title() string { return i.title }

func (i item) Description() string {
	if i.desc == "" {
		return "no URL configured"
	}
	return i.desc
}

func (i item) FilterValue() string { return i.title }

// fragmentMsg carries one streamed answer fragment.
type fragmentMsg string

// turnDoneMsg is sent when a submitted turn finishes, successfully or not.
// The conversation memory already holds the final turn either way.
type turnDoneMsg struct {
	answer pipeline.Answer
	err    error
}

// tickMsg drives the elapsed-time display while a turn is in flight.
type tickMsg time.Time

// submitCmd runs one turn through the orchestrator in the background,
// forwarding fragments to the program as they arrive.
func submitCmd(ctx context.Context, p *tea.Program, orchestrator *pipeline.Orchestrator, text string, streaming bool) tea.Cmd {
	return func() tea.Msg {
		go func() {
			var sink func(string)
			if streaming {
				sink = func(fragment string) {
					p.Send(fragmentMsg(fragment))
				}
			}
			answer, err := orchestrator.Submit(ctx, text, sink)
			p.Send(turnDoneMsg{answer: answer, err: err})
		}()
		return nil
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// connectHost builds the per-host pipeline: provider, retriever (direct
// search or tool mode), and orchestrator over the shared conversation memory.
func (m *model) connectHost(host Host) error {
	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			logging.LogEvent("provider shutdown error: %v", err)
		}
		m.provider = nil
	}

	provider, err := providerfactory.NewCompletionProvider(m.config, host)
	if err != nil {
		return err
	}

	searcher := search.NewArxivClient(m.config.SearchBaseURL(), m.config.RequestTimeout())

	var retriever pipeline.Retriever
	if m.config.ToolMode {
		registry, err := tools.NewRegistry(tools.NewArxivSearchTool(searcher, m.config.MaxSearchResults()))
		if err != nil {
			provider.Close()
			return err
		}
		retriever = tools.NewToolRetriever(provider, host, registry)
	} else {
		retriever = pipeline.NewSearchRetriever(searcher)
	}

	m.provider = provider
	m.selectedHost = host
	m.orchestrator = pipeline.NewOrchestrator(
		pipeline.NewExpander(provider, host),
		retriever,
		pipeline.NewSynthesizer(provider, host),
		m.conversation,
		m.config.MaxSearchResults(),
		m.config.ContextBudgetChars(),
	)
	return nil
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.state == viewChat && !m.isLoading && len(m.config.Hosts) > 1 {
				m.state = viewHostSelector
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.hostList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight

	case fragmentMsg:
		m.responseBuf.WriteString(string(msg))
		m.viewport.GotoBottom()
		return m, nil

	case turnDoneMsg:
		// Success or failure, the finished turn is already in memory; the
		// buffered fragments were a preview of it.
		m.responseBuf.Reset()
		m.stageLabel = ""
		m.isLoading = false
		if msg.err != nil {
			logging.LogEvent("turn failed: %v", msg.err)
		}
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case tickMsg:
		if m.isLoading {
			if m.orchestrator != nil {
				m.stageLabel = m.orchestrator.State().String()
			}
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewHostSelector:
		m.hostList, cmd = m.hostList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if _, ok := m.hostList.SelectedItem().(item); ok {
				host := m.config.Hosts[m.hostList.Index()]
				if err := m.connectHost(host); err != nil {
					m.err = err
					return m, tea.Batch(cmds...)
				}
				m.state = viewChat
				m.textArea.Focus()
				m.viewport.GotoBottom()
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" && !m.isLoading {
			userInput := strings.TrimSpace(m.textArea.Value())
			if userInput != "" {
				m.requestStartTime = time.Now()
				m.textArea.Reset()
				m.isLoading = true
				m.stageLabel = ""
				m.err = nil

				streaming := !m.config.DisableStreaming
				cmds = append(cmds, m.spinner.Tick, submitCmd(m.ctx, m.program, m.orchestrator, userInput, streaming), tickCmd())
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(util.WrapToWidth(fmt.Sprintf("Error: %v", m.err), m.width-4))
	}

	switch m.state {
	case viewHostSelector:
		listView := m.hostList.View()
		if title := m.hostList.Title; title != "" && !strings.Contains(listView, title) {
			listView = fmt.Sprintf("%s\n\n%s", title, listView)
		}
		return lipgloss.NewStyle().Margin(1, 2).Render(listView)

	case viewChat:
		return m.chatView()

	default:
		return "Unknown state"
	}
}

// chatView renders the chat screen: status header, conversation history
// (including the in-flight streamed answer), and the input or spinner line.
func (m *model) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	modeStyle := lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)

	hostInfo := fmt.Sprintf("Host: %s", m.selectedHost.Name)
	modelInfo := fmt.Sprintf("Model: %s", m.selectedHost.Model)
	retrievalMode := "Retrieval: direct"
	if m.config.ToolMode {
		retrievalMode = "Retrieval: tools"
	}

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("arxa:"),
		headerStyle.Render(hostInfo),
		headerStyle.MarginLeft(1).Render(modelInfo),
		modeStyle.Render(retrievalMode),
	)
	help := lipgloss.NewStyle().Render(" (tab to change host, esc to quit)")
	builder.WriteString(status + help + "\n\n")

	builder.WriteString(m.renderHistory())

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		stage := m.stageLabel
		if stage == "" {
			stage = "thinking"
		}
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Assistant is %s... %ss", stage, timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	return builder.String()
}

// renderHistory fills the viewport with the conversation so far plus any
// partially streamed answer, and returns the viewport's rendering.
func (m *model) renderHistory() string {
	var historyBuilder strings.Builder
	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	for _, turn := range m.conversation.History() {
		var role string
		if turn.Role == pipeline.RoleAssistant {
			role = assistantStyle.Render("Assistant: ")
		} else {
			role = userStyle.Render("You: ")
		}
		wrapped := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(turn.Text)
		historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
	}

	if m.responseBuf.Len() > 0 {
		role := assistantStyle.Render("Assistant: ")
		wrapped := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(m.responseBuf.String())
		historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped))
	}

	m.viewport.SetContent(historyBuilder.String())
	return m.viewport.View()
}

// Start runs the interactive chat program until the user quits.
func Start(ctx context.Context, cfg *appconfig.Config, cancel context.CancelFunc) {
	defer func() {
		log.Println("Cancelling all running requests...")
		cancel()
	}()

	if cfg == nil {
		log.Fatalf("Failed to start: configuration is not loaded")
	}

	var store memory.Store = memory.NullStore{}
	if path := cfg.TranscriptFilePath(); path != "" {
		store = &memory.FileStore{Path: path}
	}
	conversation, err := memory.Open(store)
	if err != nil {
		log.Fatalf("Failed to open conversation transcript: %v", err)
	}

	m := initialModel(ctx, cfg, conversation)

	// One configured host needs no selector.
	if len(cfg.Hosts) == 1 {
		if err := m.connectHost(cfg.Hosts[0]); err != nil {
			log.Fatalf("Failed to initialize provider: %v", err)
		}
		m.state = viewChat
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			logging.LogEvent("provider shutdown error: %v", err)
		}
	}
}
