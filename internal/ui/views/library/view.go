package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pathlight/internal/modules/paths/dto"
	"pathlight/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type LibraryPort interface {
	ListPaths(ctx context.Context) []dto.PathSummary
	GetPath(ctx context.Context, id string) (dto.PathDetail, error)
	SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type PathsLoadedMsg struct {
	Paths []dto.PathSummary
}

type DetailLoadedMsg struct {
	Detail dto.PathDetail
	Err    error
}

type MilestoneToggledMsg struct {
	PathID string
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type pathItem struct {
	path dto.PathSummary
}

func (i pathItem) Title() string { return i.path.Topic }
func (i pathItem) Description() string {
	return fmt.Sprintf("%d milestones  %.0f%%", i.path.Milestones, i.path.Progress*100)
}
func (i pathItem) FilterValue() string { return i.path.Topic }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      LibraryPort
	list      list.Model
	detail    dto.PathDetail
	preview   viewport.Model
	cursor    int
	milestone bool
	status    string
	width     int
	height    int
}

func New(port LibraryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Saved paths"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Refresh reloads the list from the store. The app model calls this after
// any palette action that changes the saved collection.
func (m Model) Refresh() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PathsLoadedMsg:
		items := make([]list.Item, len(msg.Paths))
		for i, p := range msg.Paths {
			items[i] = pathItem{path: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Paths) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Paths[0].ID))
		} else {
			m.detail = dto.PathDetail{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			if m.cursor >= len(m.detail.Milestones) {
				m.cursor = 0
			}
			if len(m.detail.Milestones) == 0 {
				m.milestone = false
			}
			m.preview.SetContent(m.renderDetail())
		}

	case MilestoneToggledMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = ""
		}
		cmds = append(cmds, m.loadDetailCmd(msg.PathID), m.refreshCmd())

	case tea.KeyMsg:
		if m.milestone && !m.Filtering() {
			switch msg.String() {
			case "tab":
				m.milestone = false
				m.preview.SetContent(m.renderDetail())
				return m, nil
			case "down", "j":
				if m.cursor < len(m.detail.Milestones)-1 {
					m.cursor++
				}
				m.preview.SetContent(m.renderDetail())
				return m, nil
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
				m.preview.SetContent(m.renderDetail())
				return m, nil
			case " ", "x":
				if len(m.detail.Milestones) == 0 {
					return m, nil
				}
				return m, m.toggleCmd()
			}
		} else if msg.String() == "tab" && !m.Filtering() && len(m.detail.Milestones) > 0 {
			m.milestone = true
			m.preview.SetContent(m.renderDetail())
			return m, nil
		}
	}

	if !m.milestone {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.cursor = 0
			if item, ok := m.list.SelectedItem().(pathItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.path.ID))
			}
		}
	}

	var vCmd tea.Cmd
	m.preview, vCmd = m.preview.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	border := theme.Surface1
	if m.milestone {
		border = theme.Lavender
	}
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedPathID returns the current selection's path ID, if any.
func (m Model) SelectedPathID() (string, bool) {
	if item, ok := m.list.SelectedItem().(pathItem); ok {
		return item.path.ID, true
	}
	return "", false
}

// MilestoneCursor returns the highlighted milestone index within the
// selected path's detail pane.
func (m Model) MilestoneCursor() int {
	return m.cursor
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("Save a generated path to see it here")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Topic) + "\n")
	if d.Description != "" {
		sb.WriteString(theme.Muted.Render(d.Description) + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s%.0f%%\n\n", theme.Muted.Render("progress: "), d.Progress*100))
	for i, milestone := range d.Milestones {
		mark := "[ ]"
		if milestone.Done {
			mark = theme.Good.Render("[x]")
		}
		line := fmt.Sprintf("%s %d. %s", mark, i+1, milestone.Title)
		if milestone.Estimate != "" {
			line += theme.Muted.Render("  (" + milestone.Estimate + ")")
		}
		if m.milestone && i == m.cursor {
			line = theme.Hot.Render("› ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
		if milestone.Description != "" {
			sb.WriteString(theme.Muted.Render("      "+milestone.Description) + "\n")
		}
		for _, resource := range milestone.Resources {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("      · %s: %s", resource.Type, resource.Title)) + "\n")
		}
	}
	if m.milestone {
		sb.WriteString("\n" + theme.Muted.Render("space: toggle done  tab: back to list"))
	} else {
		sb.WriteString("\n" + theme.Muted.Render("tab: focus milestones"))
	}
	if m.status != "" {
		sb.WriteString("\n" + theme.Bad.Render(m.status))
	}
	return sb.String()
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return PathsLoadedMsg{Paths: m.port.ListPaths(context.Background())}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetPath(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

func (m Model) toggleCmd() tea.Cmd {
	pathID := m.detail.ID
	index := m.cursor
	done := !m.detail.Milestones[index].Done
	return func() tea.Msg {
		err := m.port.SetMilestoneDone(context.Background(), pathID, index, done)
		return MilestoneToggledMsg{PathID: pathID, Err: err}
	}
}
