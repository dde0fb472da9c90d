package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	accountdto "pathlight/internal/modules/account/dto"
	insightdto "pathlight/internal/modules/insight/dto"
	"pathlight/internal/modules/paths/dto"
	"pathlight/internal/ui/components"
	"pathlight/internal/ui/theme"
	accountview "pathlight/internal/ui/views/account"
	generateview "pathlight/internal/ui/views/generate"
	libraryview "pathlight/internal/ui/views/library"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type pathsPort interface {
	LoadSavedPaths(ctx context.Context, userID string) dto.LoadOutput
	ListPaths(ctx context.Context) []dto.PathSummary
	GetPath(ctx context.Context, id string) (dto.PathDetail, error)
	DeletePath(ctx context.Context, id string) error
	SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error
	ExportPath(ctx context.Context, id string) (dto.ExportOutput, error)
	Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	GenerationState() dto.GenerationView
	CurrentPath() (dto.PathDetail, bool)
	SaveCurrent(ctx context.Context) (dto.SaveOutput, error)
	CancelGeneration()
	ResetGeneration()
}

type accountPort interface {
	Login(ctx context.Context, input accountdto.LoginInput) (accountdto.SessionOutput, error)
	Register(ctx context.Context, input accountdto.RegisterInput) (accountdto.SessionOutput, error)
	ContinueAsGuest(ctx context.Context) accountdto.SessionOutput
	Logout(ctx context.Context) (accountdto.SessionOutput, error)
	Current() accountdto.SessionOutput
}

type insightPort interface {
	Lookup(ctx context.Context, input insightdto.LookupInput) (insightdto.LookupOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabGenerate tabID = iota
	tabLibrary
	tabAccount
	tabCount
)

var tabLabels = [tabCount]string{
	"Generate", "Library", "Account",
}

// ─── async messages ───────────────────────────────────────────────────────────

type pathSavedMsg struct {
	out dto.SaveOutput
	err error
}

type pathDeletedMsg struct {
	id  string
	err error
}

type pathExportedMsg struct {
	out dto.ExportOutput
	err error
}

type pathsReloadedMsg struct {
	out dto.LoadOutput
}

type milestoneSetMsg struct {
	pathID string
	err    error
}

type insightLookedUpMsg struct {
	out insightdto.LookupOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Save    key.Binding
	Delete  key.Binding
	Export  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("]"), key.WithHelp("]/[", "switch tab")),
		PrevTab: key.NewBinding(key.WithKeys("["), key.WithHelp("]/[", "switch tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save path")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete path")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export path")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.Save},
		{k.Delete, k.Export},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help
// overlay, and the command palette. All business logic is delegated to
// port interfaces; all rendering is delegated to sub-views.
type Model struct {
	// ports used at this orchestration level only
	paths   pathsPort
	account accountPort
	insight insightPort

	// sub-views (one per tab)
	genView     generateview.Model
	libView     libraryview.Model
	accountView accountview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	session   accountdto.SessionOutput
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(paths pathsPort, account accountPort, insight insightPort) Model {
	return Model{
		paths:       paths,
		account:     account,
		insight:     insight,
		genView:     generateview.New(generatePortBridge{p: paths}),
		libView:     libraryview.New(libraryPortBridge{p: paths}),
		accountView: accountview.New(accountPortBridge{p: account}),
		activeTab:   tabGenerate,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		session:     account.Current(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.genView.Init(),
		m.libView.Init(),
		m.accountView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case pathSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			where := "locally"
			if msg.out.RemoteSaved {
				where = "remotely and locally"
			}
			m.status = "path saved " + where
			cmds = append(cmds, m.libView.Refresh())
		}

	case pathDeletedMsg:
		if msg.err != nil {
			m.status = "delete failed: " + msg.err.Error()
		} else {
			m.status = "path deleted"
			cmds = append(cmds, m.libView.Refresh())
		}

	case pathExportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "exported to " + msg.out.FilePath
		}

	case pathsReloadedMsg:
		if msg.out.Warning != "" {
			m.status = msg.out.Warning
		} else if msg.out.FromRemote {
			m.status = fmt.Sprintf("reloaded %d paths from server", len(msg.out.Paths))
		} else {
			m.status = fmt.Sprintf("loaded %d paths from this device", len(msg.out.Paths))
		}
		cmds = append(cmds, m.libView.Refresh())

	case milestoneSetMsg:
		if msg.err != nil {
			m.status = "milestone update failed: " + msg.err.Error()
		}
		var cmd tea.Cmd
		m.libView, cmd = m.libView.Update(libraryview.MilestoneToggledMsg{PathID: msg.pathID, Err: msg.err})
		cmds = append(cmds, cmd)

	case insightLookedUpMsg:
		if msg.err != nil {
			m.status = "insight: " + msg.err.Error()
		} else if len(msg.out.Signals) == 0 {
			m.status = fmt.Sprintf("insight %s/%s: no signals for %q", msg.out.Provider, msg.out.Probe, msg.out.Topic)
		} else {
			top := msg.out.Signals[0]
			m.status = fmt.Sprintf("insight %s: %s %.2f — %s", msg.out.Provider, top.Label, top.Score, top.Summary)
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	// SessionChangedMsg is produced by the account view but bubbles up
	// through the top level so every tab can swap to the new partition.
	case accountview.SessionChangedMsg:
		if msg.Err == nil {
			m.session = msg.Session
			if msg.Session.Guest {
				m.status = "browsing as guest"
			} else {
				m.status = "signed in as " + displayName(msg.Session)
			}
			cmds = append(cmds, m.libView.Refresh())
		}
		var cmd tea.Cmd
		m.accountView, cmd = m.accountView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter or a text input is active.
		if m.subViewTyping() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "]":
			m.activeTab = (m.activeTab + 1) % tabCount
			if m.activeTab == tabGenerate {
				cmds = append(cmds, m.genView.Resume())
			}
		case "[":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			if m.activeTab == tabGenerate {
				cmds = append(cmds, m.genView.Resume())
			}
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "d":
			if m.activeTab == tabLibrary {
				if id, ok := m.libView.SelectedPathID(); ok {
					cmds = append(cmds, m.deletePathCmd(id))
				}
			}
		case "e":
			if m.activeTab == tabLibrary {
				if id, ok := m.libView.SelectedPathID(); ok {
					cmds = append(cmds, m.exportPathCmd(id))
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabGenerate:
		m.genView, tabCmd = m.genView.Update(msg)
	case tabLibrary:
		m.libView, tabCmd = m.libView.Update(msg)
	case tabAccount:
		m.accountView, tabCmd = m.accountView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabGenerate:
		return m.genView.View()
	case tabLibrary:
		return m.libView.View()
	case tabAccount:
		return m.accountView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "pathlight  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.genView.Generating() {
		left = theme.Hot.Render("● generating") + "  " + left
	}
	who := "guest"
	if !m.session.Guest {
		who = displayName(m.session)
	}
	right := theme.Muted.Render(who + "  ?:help  ]:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, _ := m.libView.SelectedPathID()

	switch parts[0] {
	case "path:save":
		return m, m.savePathCmd()

	case "path:delete":
		if selected == "" {
			m.status = "no path selected"
			return m, nil
		}
		return m, m.deletePathCmd(selected)

	case "path:export":
		if selected == "" {
			m.status = "no path selected"
			return m, nil
		}
		return m, m.exportPathCmd(selected)

	case "paths:reload":
		return m, m.reloadPathsCmd()

	case "milestone:done", "milestone:undone":
		if selected == "" {
			m.status = "no path selected"
			return m, nil
		}
		index := m.libView.MilestoneCursor()
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 {
				m.status = "usage: " + parts[0] + " <index>"
				return m, nil
			}
			index = n - 1
		}
		done := parts[0] == "milestone:done"
		return m, m.setMilestoneCmd(selected, index, done)

	case "generate:cancel":
		m.paths.CancelGeneration()
		m.status = "generation cancelled"
		m.activeTab = tabGenerate
		return m, m.genView.Resume()

	case "generate:reset":
		m.paths.ResetGeneration()
		m.status = "generation reset"
		m.activeTab = tabGenerate
		return m, m.genView.Resume()

	case "insight:lookup":
		if len(parts) < 3 {
			m.status = "usage: insight:lookup <provider> <topic>"
			return m, nil
		}
		topic := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		return m, m.insightLookupCmd(parts[1], topic)

	case "account:guest":
		m.activeTab = tabAccount
		return m, func() tea.Msg {
			return accountview.SessionChangedMsg{Session: m.account.ContinueAsGuest(context.Background())}
		}

	case "account:logout":
		m.activeTab = tabAccount
		return m, func() tea.Msg {
			session, err := m.account.Logout(context.Background())
			return accountview.SessionChangedMsg{Session: session, Err: err}
		}

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewTyping reports whether the active tab is consuming free-form
// typing, in which case global key bindings must yield.
func (m Model) subViewTyping() bool {
	switch m.activeTab {
	case tabGenerate:
		return m.genView.Typing()
	case tabLibrary:
		return m.libView.Filtering()
	case tabAccount:
		return m.accountView.Typing()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.genView, _ = m.genView.Update(sz)
	m.libView, _ = m.libView.Update(sz)
	m.accountView, _ = m.accountView.Update(sz)
}

func displayName(s accountdto.SessionOutput) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) savePathCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.paths.SaveCurrent(context.Background())
		return pathSavedMsg{out: out, err: err}
	}
}

func (m Model) deletePathCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.paths.DeletePath(context.Background(), id)
		return pathDeletedMsg{id: id, err: err}
	}
}

func (m Model) exportPathCmd(id string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.paths.ExportPath(context.Background(), id)
		return pathExportedMsg{out: out, err: err}
	}
}

func (m Model) reloadPathsCmd() tea.Cmd {
	userID := m.session.UserID
	return func() tea.Msg {
		return pathsReloadedMsg{out: m.paths.LoadSavedPaths(context.Background(), userID)}
	}
}

func (m Model) setMilestoneCmd(pathID string, index int, done bool) tea.Cmd {
	return func() tea.Msg {
		err := m.paths.SetMilestoneDone(context.Background(), pathID, index, done)
		return milestoneSetMsg{pathID: pathID, err: err}
	}
}

func (m Model) insightLookupCmd(provider, topic string) tea.Cmd {
	return func() tea.Msg {
		if m.insight == nil {
			return insightLookedUpMsg{err: fmt.Errorf("no insight providers configured")}
		}
		out, err := m.insight.Lookup(context.Background(), insightdto.LookupInput{Provider: provider, Topic: topic})
		return insightLookedUpMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type generatePortBridge struct{ p pathsPort }

func (b generatePortBridge) Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	return b.p.Generate(ctx, input)
}
func (b generatePortBridge) GenerationState() dto.GenerationView {
	return b.p.GenerationState()
}
func (b generatePortBridge) CurrentPath() (dto.PathDetail, bool) {
	return b.p.CurrentPath()
}
func (b generatePortBridge) SaveCurrent(ctx context.Context) (dto.SaveOutput, error) {
	return b.p.SaveCurrent(ctx)
}
func (b generatePortBridge) CancelGeneration() { b.p.CancelGeneration() }
func (b generatePortBridge) ResetGeneration()  { b.p.ResetGeneration() }

type libraryPortBridge struct{ p pathsPort }

func (b libraryPortBridge) ListPaths(ctx context.Context) []dto.PathSummary {
	return b.p.ListPaths(ctx)
}
func (b libraryPortBridge) GetPath(ctx context.Context, id string) (dto.PathDetail, error) {
	return b.p.GetPath(ctx, id)
}
func (b libraryPortBridge) SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error {
	return b.p.SetMilestoneDone(ctx, pathID, index, done)
}

type accountPortBridge struct{ p accountPort }

func (b accountPortBridge) Login(ctx context.Context, input accountdto.LoginInput) (accountdto.SessionOutput, error) {
	return b.p.Login(ctx, input)
}
func (b accountPortBridge) Register(ctx context.Context, input accountdto.RegisterInput) (accountdto.SessionOutput, error) {
	return b.p.Register(ctx, input)
}
func (b accountPortBridge) ContinueAsGuest(ctx context.Context) accountdto.SessionOutput {
	return b.p.ContinueAsGuest(ctx)
}
func (b accountPortBridge) Logout(ctx context.Context) (accountdto.SessionOutput, error) {
	return b.p.Logout(ctx)
}
func (b accountPortBridge) Current() accountdto.SessionOutput {
	return b.p.Current()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
