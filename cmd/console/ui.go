package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/storyloom/storyloom/internal/handlers"
	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

const placeholderText = "Speak to the story..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	sessionID    uuid.UUID
	character    string
	transcript   []chat.ChatMessage
	updateNotice string
	worldDoc     *world.DynamicWorld
	progress     *handlers.ProgressReport
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Character selection state
	showCharacterModal bool
	characters         []handlers.CharacterSummary
	selectedCharacter  int
	loadingCharacters  bool

	// Quit confirmation state
	showQuitModal bool

	progressTick int
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type worldMsg struct {
	doc      *world.DynamicWorld
	progress *handlers.ProgressReport
	err      error
}

type charactersLoadedMsg struct {
	characters []handlers.CharacterSummary
	selected   string
	err        error
}

type characterSelectedMsg struct {
	doc *world.DynamicWorld
	err error
}

type worldResetMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	characterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:             cfg,
		api:                newAPIClient(client, cfg.APIBaseURL),
		textarea:           ta,
		chatViewport:       chatVp,
		metaViewport:       metaVp,
		showCharacterModal: true,
		loadingCharacters:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadCharacters()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showCharacterModal {
		return m.updateCharacterModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.writeMetaContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.updateNotice = ""

			m.transcript = append(m.transcript, chat.ChatMessage{
				Sender:  chat.SenderUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			m.chatViewport.SetContent(m.chatViewport.View() + errorStyle.Render("Error: "+msg.err.Error()) + "\n\n")
		} else {
			m.sessionID = msg.response.SessionID
			m.updateNotice = msg.response.WorldUpdate
			m.transcript = append(m.transcript, chat.ChatMessage{
				Sender:    chat.SenderCharacter,
				Character: m.character,
				Content:   msg.response.Response,
			})
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshWorld()

	case worldMsg:
		if msg.err == nil {
			m.worldDoc = msg.doc
			m.progress = msg.progress
			m.writeMetaContent()
		}

	case worldResetMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// Back to character selection for a fresh playthrough.
		m.sessionID = uuid.Nil
		m.transcript = nil
		m.updateNotice = ""
		m.worldDoc = nil
		m.progress = nil
		m.showCharacterModal = true
		m.loadingCharacters = true
		return m, m.loadCharacters()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("STORYLOOM") + "\n\n")
	content.WriteString("You are playing " + speakerStyle.Render(m.character) + ". Speak, and the story answers.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, msg := range m.transcript {
		switch msg.Sender {
		case chat.SenderUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		case chat.SenderCharacter:
			prefix := characterStyle.Render(m.character + ": ")
			content.WriteString(prefix + wordwrap.String(msg.Content, chatWidth-len(m.character)-2) + "\n\n")
		}
	}

	if !m.loading && m.updateNotice != "" {
		content.WriteString(loadingStyle.Render("✦ World updated: "+m.updateNotice) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetaContent() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD") + "\n\n")

	if m.worldDoc != nil {
		pc := m.worldDoc.FindCharacter(m.worldDoc.User.CharacterPlayed)
		content.WriteString("Character:\n" + m.worldDoc.User.CharacterPlayed + "\n\n")
		content.WriteString("Language:\n" + m.worldDoc.User.Language + "\n\n")
		if pc != nil {
			if pc.CurrentLocation != "" {
				content.WriteString("Location:\n" + pc.CurrentLocation + "\n\n")
			}
			content.WriteString(fmt.Sprintf("Items: %d\n", len(pc.Items)))
			for _, item := range pc.Items {
				content.WriteString("• " + item + "\n")
			}
			content.WriteString("\n")
			content.WriteString(fmt.Sprintf("Skills: %d\n", len(pc.SkillsOrPowers)))
			for _, skill := range pc.SkillsOrPowers {
				content.WriteString("• " + skill + "\n")
			}
			content.WriteString("\n")
		}
	}

	if m.progress != nil {
		content.WriteString("Story:\n")
		content.WriteString(fmt.Sprintf("• %d events\n", m.progress.Progress.TotalEvents))
		content.WriteString(fmt.Sprintf("• %d yours\n", m.progress.Progress.UserGeneratedEvents))
		content.WriteString(fmt.Sprintf("• %d endings\n", m.progress.Progress.AlternativeEndings))
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /status: Status\n")
	content.WriteString("• /reset: New story\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /status - Show your character's status
• /reset - Abandon this playthrough and pick a new character
• Ctrl+C - Quit

Play by typing what your character says or does.
`
		m.chatViewport.SetContent(m.chatViewport.View() + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()
		return m, nil

	case "/status":
		if m.worldDoc == nil {
			return m, m.refreshWorld()
		}
		status := m.worldDoc.CharacterStatus(m.worldDoc.User.CharacterPlayed)
		m.chatViewport.SetContent(m.chatViewport.View() + status + "\n\n")
		m.chatViewport.GotoBottom()
		return m, nil

	case "/reset":
		return m, m.doReset()
	}

	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.sendChat(chat.ChatRequest{
			SessionID: m.sessionID,
			Character: m.character,
			Message:   message,
		})
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) refreshWorld() tea.Cmd {
	return func() tea.Msg {
		doc, err := m.api.getWorld()
		if err != nil {
			return worldMsg{err: err}
		}
		report, err := m.api.getProgress()
		if err != nil {
			return worldMsg{doc: doc, err: nil}
		}
		return worldMsg{doc: doc, progress: report}
	}
}

func (m ConsoleUI) loadCharacters() tea.Cmd {
	return func() tea.Msg {
		status, err := m.api.getSetupStatus()
		if err != nil {
			return charactersLoadedMsg{err: err}
		}
		characters, err := m.api.listCharacters()
		if err != nil {
			return charactersLoadedMsg{err: err}
		}
		selected := ""
		if status.CharacterSelected {
			selected = status.SelectedCharacter
		}
		return charactersLoadedMsg{characters: characters, selected: selected}
	}
}

func (m ConsoleUI) doSelect(name string) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.api.selectCharacter(name, "")
		return characterSelectedMsg{doc, err}
	}
}

func (m ConsoleUI) doReset() tea.Cmd {
	return func() tea.Msg {
		return worldResetMsg{err: m.api.resetWorld()}
	}
}

func (m ConsoleUI) updateCharacterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case charactersLoadedMsg:
		m.loadingCharacters = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.characters = msg.characters
		// Pre-highlight the previously selected character, if any.
		for i, c := range m.characters {
			if c.Name == msg.selected {
				m.selectedCharacter = i
				break
			}
		}

	case characterSelectedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.worldDoc = msg.doc
		m.character = msg.doc.User.CharacterPlayed
		m.showCharacterModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
			m.ready = true
		}
		m.writeChatContent()
		m.writeMetaContent()
		m.textarea.Focus()
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingCharacters || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedCharacter > 0 {
				m.selectedCharacter--
			}
		case tea.KeyDown:
			if m.selectedCharacter < len(m.characters)-1 {
				m.selectedCharacter++
			}
		case tea.KeyEnter:
			if len(m.characters) > 0 {
				m.loading = true
				return m, m.doSelect(m.characters[m.selectedCharacter].Name)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderCharacterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingCharacters:
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching the story's cast..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening the Book..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Building your world..."))
	default:
		content.WriteString(modalTitleStyle.Render("Choose Your Character"))
		content.WriteString("\n\n")
		for i, c := range m.characters {
			label := c.Name
			if len(c.PersonalityTraits) > 0 {
				label += "  (" + strings.Join(c.PersonalityTraits, ", ") + ")"
			}
			if i == m.selectedCharacter {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Story?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. Quit now?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCharacterModal {
		return m.renderCharacterModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar animates a bar while the LLM composes its reply.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
