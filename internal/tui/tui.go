// Package tui is the terminal front-end for the sanctuary: a chat log,
// a vitals side panel and a command line for steward actions.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nebulazenith/sanctuary/internal/chat"
	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/domain/item"
	"github.com/nebulazenith/sanctuary/internal/engine"
	"github.com/nebulazenith/sanctuary/internal/infra/voice"
)

// refreshRate drives the vitals panel redraw.
const refreshRate = 5 * time.Second

// App bundles the systems the TUI drives.
type App struct {
	Session    *engine.Session
	Expedition *engine.ExpeditionSystem
	Arcade     *engine.ArcadeSystem
	Chat       *chat.Orchestrator
	Voice      *voice.Synthesizer // nil when voice is disabled
	Player     *voice.Player
}

type model struct {
	app       *App
	textInput textinput.Model
	viewport  viewport.Model
	log       string
	width     int
	height    int
	thinking  bool
	ready     bool
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	nebulaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7AFFF"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(app *App) model {
	ti := textinput.New()
	ti.Placeholder = "Signal Nebula..."
	ti.Focus()
	ti.CharLimit = 280
	ti.Width = 60

	return model{
		app:       app,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

type tickMsg time.Time

type chatReplyMsg struct {
	reply chat.Reply
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" || m.thinking {
				return m, nil
			}
			m.textInput.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.appendLine(userStyle.Render("> " + input))
			m.thinking = true
			return m, m.sendChat(input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := int(float64(msg.Width) * 0.7)
		if !m.ready {
			m.viewport = viewport.New(logWidth, msg.Height-6)
			m.ready = true
			m.appendLine(systemStyle.Render(m.greeting()))
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = msg.Height - 6
		}
		m.viewport.SetContent(m.log)

	case tickMsg:
		now := time.Now()
		m.app.Session.Tick(context.Background(), now)
		if m.app.Expedition != nil {
			m.app.Expedition.StageCompletionIfDue(now)
		}
		return m, tick()

	case chatReplyMsg:
		m.thinking = false
		m.appendLine(nebulaStyle.Render(msg.reply.Text))
		if msg.reply.FellBack {
			m.appendLine(systemStyle.Render("(cosmic turbulence: " + string(msg.reply.Reason) + ")"))
		}
		return m, m.speak(msg.reply.Text)
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *model) greeting() string {
	name := m.app.Session.Name()
	return name + " awakened in the sanctuary. Type /help for commands."
}

func (m *model) appendLine(line string) {
	m.log += line + "\n\n"
	if m.ready {
		m.viewport.SetContent(m.log)
		m.viewport.GotoBottom()
	}
}

func (m model) handleCommand(input string) (tea.Model, tea.Cmd) {
	now := time.Now()
	ctx := context.Background()
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit":
		return m, tea.Quit

	case "/help":
		m.appendLine(systemStyle.Render(helpText))

	case "/feed":
		if len(args) == 0 {
			m.appendLine(systemStyle.Render("Usage: /feed <item>"))
			break
		}
		id := matchItem(strings.Join(args, " "))
		res := m.app.Session.Feed(ctx, id, now)
		if res == companion.ResultOK {
			m.appendLine(systemStyle.Render(fmt.Sprintf("Fed %s.", id)))
			mood := m.app.Session.View(ctx, now).Mood
			m.app.Chat.QueueEventContext(chat.FeedingContext(id, mood))
		} else {
			m.appendLine(systemStyle.Render("Feed failed: " + string(res)))
		}

	case "/buy":
		if len(args) == 0 {
			m.appendLine(systemStyle.Render("Usage: /buy <item>"))
			break
		}
		id := matchItem(strings.Join(args, " "))
		res := m.app.Session.Purchase(ctx, id, now)
		if res == companion.ResultOK {
			m.appendLine(systemStyle.Render(fmt.Sprintf("Purchased %s.", id)))
		} else {
			m.appendLine(systemStyle.Render("Purchase failed: " + string(res)))
		}

	case "/shop":
		var b strings.Builder
		b.WriteString("The Cosmic Shop:\n")
		for _, id := range item.All() {
			def, _ := item.Get(id)
			fmt.Fprintf(&b, "  %-12s %3d wisdom  (%s)\n", def.Name, def.Cost, def.Description)
		}
		m.appendLine(systemStyle.Render(b.String()))

	case "/sleep":
		if m.app.Session.DeepSleep(ctx, now) == companion.ResultOK {
			m.appendLine(systemStyle.Render("Deep Sleep initiated (+2 Energy)."))
		}

	case "/wake":
		if m.app.Session.Wake(ctx, now) == companion.ResultOK {
			m.appendLine(systemStyle.Render("Gently woken."))
		}

	case "/expedition":
		if len(args) == 0 {
			var b strings.Builder
			b.WriteString("Sectors:\n")
			for _, s := range engine.Sectors {
				fmt.Fprintf(&b, "  %-16s %s, %.1f energy, +%.0f XP\n", s.Name, s.Duration, s.EnergyCost, s.XPReward)
			}
			m.appendLine(systemStyle.Render(b.String()))
			break
		}
		sector := matchSector(strings.Join(args, " "))
		if err := m.app.Expedition.Launch(ctx, sector, now); err != nil {
			m.appendLine(systemStyle.Render("Launch failed: " + err.Error()))
		} else {
			m.appendLine(systemStyle.Render("Expedition launched to " + sector + "."))
		}

	case "/collect":
		sector, found, xp, err := m.app.Expedition.Collect(ctx, now)
		if err != nil {
			m.appendLine(systemStyle.Render("Dock failed: " + err.Error()))
			break
		}
		foundStr := "just stardust"
		if found != "" {
			foundStr = string(found)
		}
		m.appendLine(systemStyle.Render(fmt.Sprintf("Docked from %s: +%.0f XP, found %s.", sector, xp, foundStr)))
		mood := m.app.Session.View(ctx, now).Mood
		m.app.Chat.QueueEventContext(chat.ExpeditionContext(sector, mood, found))

	case "/duel":
		if len(args) == 0 {
			m.appendLine(systemStyle.Render("Usage: /duel Comet|Paper|Scissors"))
			break
		}
		sig, ok := parseSignal(args[0])
		if !ok {
			m.appendLine(systemStyle.Render("Usage: /duel Comet|Paper|Scissors"))
			break
		}
		out := m.app.Arcade.PlaySignalDuel(ctx, sig, now)
		m.appendLine(systemStyle.Render(out.Text))

	case "/pulse":
		if len(args) == 0 {
			m.appendLine(systemStyle.Render("Usage: /pulse <1-10>"))
			break
		}
		guess, err := strconv.Atoi(args[0])
		if err != nil || guess < 1 || guess > 10 {
			m.appendLine(systemStyle.Render("Frequency must be 1-10."))
			break
		}
		out := m.app.Arcade.PlayNumberPulse(ctx, guess, now)
		m.appendLine(systemStyle.Render(out.Text))

	case "/journal":
		var b strings.Builder
		b.WriteString("Steward's Archive:\n")
		for _, e := range m.app.Session.Journal(10) {
			fmt.Fprintf(&b, "  [%s] %s\n", e.Timestamp.Format("15:04"), e.Summary)
		}
		m.appendLine(systemStyle.Render(b.String()))

	case "/style":
		if len(args) == 0 {
			m.appendLine(systemStyle.Render("Usage: /style whimsical|balanced|direct"))
			break
		}
		m.app.Chat.SetStyle(chat.ParseStyle(args[0]))
		m.appendLine(systemStyle.Render("Chat style set to " + args[0] + "."))

	default:
		m.appendLine(systemStyle.Render("Unknown command. Type /help."))
	}

	return m, nil
}

const helpText = `Commands:
  /feed <item>        feed from inventory
  /buy <item>         spend wisdom in the shop
  /shop               list shop prices
  /sleep  /wake       deep sleep and early wake
  /expedition [name]  list sectors or launch
  /collect            dock and collect rewards
  /duel <signal>      Comet / Paper / Scissors
  /pulse <1-10>       guess the frequency
  /journal            recent archive entries
  /style <name>       chat voice style
  /quit               leave the sanctuary
Anything else is a message to your companion.`

// matchItem resolves shorthand like "cookie" to a known item ID.
func matchItem(s string) item.ID {
	needle := strings.ToLower(s)
	for _, id := range item.All() {
		if strings.Contains(strings.ToLower(string(id)), needle) {
			return id
		}
	}
	return item.ID(s)
}

func parseSignal(s string) (engine.Signal, bool) {
	switch strings.ToLower(s) {
	case "comet":
		return engine.SignalComet, true
	case "paper":
		return engine.SignalPaper, true
	case "scissors":
		return engine.SignalScissors, true
	}
	return "", false
}

func matchSector(s string) string {
	needle := strings.ToLower(s)
	for _, sec := range engine.Sectors {
		if strings.Contains(strings.ToLower(sec.Name), needle) {
			return sec.Name
		}
	}
	return s
}

func (m model) sendChat(text string) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		snap := m.app.Session.Companion()
		comp := companion.FromSnapshot(snap)
		reply := m.app.Chat.Send(context.Background(), comp, text, now)
		return chatReplyMsg{reply}
	}
}

func (m model) speak(text string) tea.Cmd {
	if m.app.Voice == nil || !m.app.Voice.IsAvailable() {
		return nil
	}
	return func() tea.Msg {
		res, err := m.app.Voice.Speak(context.Background(), text)
		if err != nil || res == voice.ResultError {
			return nil
		}
		if m.app.Player != nil {
			_ = m.app.Player.Play(m.app.Voice.OutputPath())
		}
		return nil
	}
}

func (m model) View() string {
	if !m.ready {
		return "\n  Drifting into the sanctuary...\n"
	}

	logView := m.viewport.View()
	panelView := m.renderPanel()

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, logView, panelView)

	input := m.textInput.View()
	if m.thinking {
		input = systemStyle.Render("Nebula is thinking...")
	}
	help := helpStyle.Render("/help for commands; Esc to quit.")

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+input,
		"\n"+help,
	) + "\n"
}

func (m model) renderPanel() string {
	now := time.Now()
	view := m.app.Session.View(context.Background(), now)
	snap := view.Snapshot

	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(snap.Name)) + "\n")
	fmt.Fprintf(&b, "%s  Lv.%d %s\n\n", avatarGlyph(view.Avatar), snap.Level, snap.EvolutionStage)

	b.WriteString(titleStyle.Render("VITALS") + "\n")
	fmt.Fprintf(&b, "Hunger     %s\n", bar(snap.Hunger))
	fmt.Fprintf(&b, "Happiness  %s\n", bar(snap.Happiness))
	fmt.Fprintf(&b, "Energy     %s\n\n", bar(snap.Energy))

	b.WriteString(titleStyle.Render("MOOD") + "\n")
	b.WriteString(string(view.Mood) + "\n")
	b.WriteString(view.MoodLine + "\n\n")

	b.WriteString(titleStyle.Render("TRAIT") + "\n")
	b.WriteString(string(view.Trait) + "\n\n")

	fmt.Fprintf(&b, "%s\n%.0f wisdom\n\n", titleStyle.Render("WISDOM"), snap.XP)

	b.WriteString(titleStyle.Render("CARGO") + "\n")
	if len(snap.Inventory) == 0 {
		b.WriteString("(empty)\n")
	} else {
		for _, it := range snap.Inventory {
			b.WriteString("- " + it + "\n")
		}
	}

	if m.app.Expedition != nil {
		st := m.app.Expedition.State()
		if st.Active {
			b.WriteString("\n" + titleStyle.Render("EXPEDITION") + "\n")
			if st.Complete {
				b.WriteString("Returned from " + st.Sector + "! /collect\n")
			} else {
				fmt.Fprintf(&b, "To %s, ETA %ds\n", st.Sector, int(m.app.Expedition.Remaining(now).Seconds()))
			}
		}
	}

	if !snap.IsAlive {
		b.WriteString("\n" + titleStyle.Render("MEMORIAL") + "\n")
		b.WriteString(snap.Name + " has passed beyond the veil.\n")
	}

	panelWidth := int(float64(m.width) * 0.27)
	return panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(b.String())
}

func bar(v float64) string {
	filled := int(v + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %.1f", v)
}

func avatarGlyph(a companion.AvatarState) string {
	switch a {
	case companion.AvatarSleeping:
		return "(-.-) zZ"
	case companion.AvatarHungry:
		return "(o_o)"
	case companion.AvatarTired:
		return "(=_=)"
	case companion.AvatarSad:
		return "(;_;)"
	case companion.AvatarRadiant:
		return "(☆‿☆)"
	case companion.AvatarTeen:
		return "(^-^)/"
	case companion.AvatarAdult:
		return "(´◡`)"
	default:
		return "(·◡·)"
	}
}

// Run starts the TUI event loop.
func Run(app *App) error {
	p := tea.NewProgram(NewModel(app), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
