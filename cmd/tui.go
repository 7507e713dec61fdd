package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suderio/scenario-engine/internal/session"
	"github.com/suderio/scenario-engine/internal/world"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

const welcome = "Type scenario events, e.g. VAIController Deploy.\nType 'docs' for the command list, 'exit' to quit."

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type replModel struct {
	ctx         context.Context
	app         *session.Session
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	network     string
	showList    bool
}

func newREPLModel(ctx context.Context, app *session.Session) replModel {
	ti := textinput.New()
	ti.Placeholder = "Enter event (e.g., VAIController Mint 1e18)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false)
	sugList.SetShowHelp(false)

	network := app.World().Config().Network
	if network == "" {
		network = "sim"
	}

	return replModel{
		ctx:         ctx,
		app:         app,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		historyIdx:  -1,
		logContent:  welcome,
		network:     network,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

// completions lists candidate inputs for val: subjects and From first, then
// the commands of the typed subject, then entity names.
func completions(subjects []string, commands func(subject string) []string, w world.World, val string) []string {
	fields := strings.Fields(val)
	trailing := strings.HasSuffix(val, " ")

	var candidates []string
	switch {
	case len(fields) == 0:
		return nil
	case len(fields) == 1 && !trailing:
		candidates = append(subjects, session.FromKeyword+" ", "docs", "exit")
	case fields[0] == session.FromKeyword && len(fields) <= 2 && !(len(fields) == 2 && trailing):
		aliases := make([]string, 0, len(w.Config().Accounts))
		for alias := range w.Config().Accounts {
			aliases = append(aliases, session.FromKeyword+" "+alias+" (")
		}
		candidates = aliases
	default:
		subject := fields[0]
		base := strings.Join(fields, " ")
		if !trailing {
			base = strings.Join(fields[:len(fields)-1], " ")
		}
		var words []string
		words = append(words, commands(subject)...)
		for _, e := range w.Entities() {
			words = append(words, e.Name)
		}
		for _, word := range words {
			candidates = append(candidates, base+" "+word)
		}
	}

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(val)) && len(val) < len(c) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (m *replModel) commandNames(subject string) []string {
	specs, ok := m.app.Registry().Commands(subject)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, spec := range specs {
		if !seen[spec.Name] {
			seen[spec.Name] = true
			out = append(out, spec.Name)
		}
	}
	return out
}

func (m *replModel) updateSuggestions() {
	var items []list.Item
	for _, c := range completions(m.app.Registry().Subjects(), m.commandNames, m.app.World(), m.textInput.Value()) {
		items = append(items, suggestion(c))
	}

	m.suggestions.SetItems(items)
	m.showList = len(items) > 0
	if m.showList {
		h := len(items)
		if h > 10 {
			h = 10
		}
		if h < 4 {
			h = 4
		}
		m.suggestions.SetHeight(h)
		m.suggestions.ResetSelected()
	}
}

func (m *replModel) execute(val string) {
	m.logContent += fmt.Sprintf("\n\n> %s\n", val)

	if val == "docs" || strings.HasPrefix(val, "docs ") {
		doc, err := m.app.Registry().Docs(strings.TrimSpace(strings.TrimPrefix(val, "docs")))
		if err != nil {
			m.logContent += fmt.Sprintf("Error: %v", err)
			return
		}
		m.logContent += doc
		return
	}

	before := m.app.World().ActionCount()
	if err := m.app.Execute(m.ctx, val); err != nil {
		m.logContent += fmt.Sprintf("Error: %v", err)
		return
	}
	actions := m.app.World().Actions()
	if len(actions) == before {
		m.logContent += "ok"
		return
	}
	for _, a := range actions[before:] {
		m.logContent += describeAction(a) + "\n"
	}
}

func describeAction(a world.Action) string {
	switch {
	case a.Invocation.Success:
		return a.Description
	case a.Invocation.Error != nil:
		return fmt.Sprintf("%s -> %s", a.Description, a.Invocation.Error.String())
	}
	return a.Description + " -> failed"
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}

			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()

				m.execute(val)
				m.viewport.SetContent(m.logContent)
				m.viewport.GotoBottom()
			}
		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	inputH := 1

	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2
	}

	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	paddingH := 7

	overhead := titleH + stateH + inputH + listAreaHeight + infoH + paddingH + 4

	m.viewport.Height = m.height - overhead
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *replModel) renderState() string {
	w := m.app.World()
	view := "=== World ===\n\n"

	entities := w.Entities()
	if len(entities) == 0 {
		view += "No contracts deployed.\n"
	}
	for _, e := range entities {
		view += fmt.Sprintf(" - %s (%s) at %s\n", e.Name, e.Kind, e.Address)
	}

	view += "\n"
	if last, ok := w.LastAction(); ok {
		view += fmt.Sprintf("%d actions, last: %s", w.ActionCount(), describeAction(last))
	} else {
		view += "No actions yet."
	}

	return stateBoxStyle.Width(m.width - 4).Render(view)
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" Scenario REPL | %s ", m.network))
	stateBox := m.renderState()
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		stateBox,
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

// RunTUI runs the interactive shell over app until the user quits.
func RunTUI(ctx context.Context, app *session.Session) error {
	m := newREPLModel(ctx, app)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
