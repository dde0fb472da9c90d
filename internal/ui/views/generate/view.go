package generate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pathlight/internal/modules/paths/dto"
	"pathlight/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type GeneratePort interface {
	Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	GenerationState() dto.GenerationView
	CurrentPath() (dto.PathDetail, bool)
	SaveCurrent(ctx context.Context) (dto.SaveOutput, error)
	CancelGeneration()
	ResetGeneration()
}

// ─── messages ────────────────────────────────────────────────────────────────

type SubmittedMsg struct {
	Out dto.GenerateOutput
	Err error
}

type SavedMsg struct {
	Out dto.SaveOutput
	Err error
}

// pollTickMsg drives the progress display while a task is in flight. It
// only reads a snapshot; the poller goroutine owns the actual requests.
type pollTickMsg time.Time

const pollTickEvery = 500 * time.Millisecond

// ─── form fields ─────────────────────────────────────────────────────────────

type fieldID int

const (
	fieldTopic fieldID = iota
	fieldExpertise
	fieldWeeks
	fieldCommitment
	fieldStyle
	fieldGoals
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Topic", "Expertise level", "Duration (weeks)", "Time commitment", "Learning style", "Goals (comma separated)",
}

var fieldPlaceholders = [fieldCount]string{
	"distributed systems", "beginner", "8", "5 hours/week", "hands-on", "pass the cka, build a side project",
}

// ─── model ───────────────────────────────────────────────────────────────────

type mode int

const (
	modeForm mode = iota
	modeGenerating
	modeResult
)

type Model struct {
	port GeneratePort

	mode    mode
	inputs  [fieldCount]textinput.Model
	focused fieldID
	spinner spinner.Model
	state   dto.GenerationView
	result  viewport.Model
	status  string
	width   int
	height  int
}

func New(port GeneratePort) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 200
		ti.Width = 48
		inputs[i] = ti
	}
	inputs[fieldTopic].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		inputs:  inputs,
		spinner: sp,
		result:  viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Resume switches the view to whatever phase the store is in. Called when
// the tab regains focus so an in-flight generation keeps animating.
func (m *Model) Resume() tea.Cmd {
	state := m.port.GenerationState()
	m.state = state
	switch {
	case state.Generating:
		m.mode = modeGenerating
		return tea.Batch(m.spinner.Tick, pollTick())
	case state.HasResult:
		m.showResult()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.result.Width = m.width - 6
		m.result.Height = m.height - 6

	case SubmittedMsg:
		if msg.Err != nil {
			m.mode = modeForm
			m.status = msg.Err.Error()
			return m, nil
		}
		if msg.Out.Immediate {
			m.showResult()
			return m, nil
		}
		m.mode = modeGenerating
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, pollTick())

	case pollTickMsg:
		if m.mode != modeGenerating {
			return m, nil
		}
		m.state = m.port.GenerationState()
		switch {
		case m.state.Error != "":
			m.mode = modeForm
			m.status = m.state.Error
			return m, nil
		case m.state.HasResult:
			m.showResult()
			return m, nil
		}
		return m, pollTick()

	case SavedMsg:
		if msg.Err != nil {
			m.status = "save failed: " + msg.Err.Error()
			return m, nil
		}
		where := "locally"
		if msg.Out.RemoteSaved {
			where = "remotely and locally"
		}
		m.status = fmt.Sprintf("saved %s as %s", where, msg.Out.PathID)
		m.port.ResetGeneration()
		m.reset()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeGenerating:
			if msg.String() == "esc" {
				m.port.CancelGeneration()
				m.mode = modeForm
				m.status = "generation cancelled"
				return m, nil
			}
		case modeResult:
			switch msg.String() {
			case "s":
				return m, m.saveCmd()
			case "esc", "n":
				m.port.ResetGeneration()
				m.reset()
				return m, nil
			}
		}
	}

	if m.mode == modeResult {
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.inputs[m.focused].Focused() {
		switch msg.String() {
		case "enter", "i":
			m.inputs[m.focused].Focus()
		}
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.inputs[m.focused].Blur()
		return m, nil
	case "enter":
		if m.focused == fieldCount-1 {
			return m, m.submitCmd()
		}
		m.focusField(m.focused + 1)
		return m, nil
	case "ctrl+s":
		return m, m.submitCmd()
	case "down":
		m.focusField((m.focused + 1) % fieldCount)
		return m, nil
	case "up":
		m.focusField((m.focused + fieldCount - 1) % fieldCount)
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(id fieldID) {
	m.inputs[m.focused].Blur()
	m.focused = id
	m.inputs[m.focused].Focus()
}

func (m *Model) showResult() {
	m.mode = modeResult
	m.state = m.port.GenerationState()
	if detail, ok := m.port.CurrentPath(); ok {
		m.result.SetContent(renderDetail(detail))
	}
}

func (m *Model) reset() {
	m.mode = modeForm
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focusField(fieldTopic)
	m.state = dto.GenerationView{}
}

// Generating reports whether a task is in flight, for the status bar.
func (m Model) Generating() bool {
	return m.mode == modeGenerating
}

// Typing reports whether the request form is consuming keystrokes, so
// the app model leaves global bindings alone. Esc blurs the form and
// hands the keyboard back.
func (m Model) Typing() bool {
	return m.mode == modeForm && m.inputs[m.focused].Focused()
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	switch m.mode {
	case modeGenerating:
		return m.viewProgress()
	case modeResult:
		return m.viewResult()
	default:
		return m.viewForm()
	}
}

func (m Model) viewForm() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Generate a learning path") + "\n\n")
	for i := fieldID(0); i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == m.focused {
			sb.WriteString(theme.Hot.Render("› "+label) + "\n")
		} else {
			sb.WriteString(theme.Muted.Render("  "+label) + "\n")
		}
		sb.WriteString("  " + m.inputs[i].View() + "\n")
	}
	hint := "enter: next field  ctrl+s: generate  esc: browse"
	if !m.inputs[m.focused].Focused() {
		hint = "enter: edit form"
	}
	sb.WriteString("\n" + theme.Muted.Render(hint))
	if m.status != "" {
		sb.WriteString("\n\n" + theme.Bad.Render(m.status))
	}
	return theme.Pane.Width(m.width - 2).Render(sb.String())
}

func (m Model) viewProgress() string {
	steps := []string{"queued", "started", "analyzing", "generating"}
	var sb strings.Builder
	sb.WriteString(m.spinner.View() + " Generating")
	if m.state.Topic != "" {
		sb.WriteString(": " + m.state.Topic)
	}
	sb.WriteString("\n\n")
	for i, step := range steps {
		marker := theme.Muted.Render("○")
		label := theme.Muted.Render(step)
		if i < m.state.Step {
			marker = theme.Good.Render("●")
		} else if i == m.state.Step {
			marker = theme.Hot.Render("●")
			label = theme.Hot.Render(step)
		}
		sb.WriteString("  " + marker + " " + label + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("esc: cancel"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}

func (m Model) viewResult() string {
	footer := theme.Muted.Render("s: save  n: new path  ↑/↓: scroll")
	if m.status != "" {
		footer = theme.Good.Render(m.status) + "  " + footer
	}
	return theme.Pane.Width(m.width - 2).Render(m.result.View() + "\n\n" + footer)
}

func renderDetail(d dto.PathDetail) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Topic) + "\n")
	if d.Description != "" {
		sb.WriteString(d.Description + "\n")
	}
	sb.WriteString("\n")
	for _, milestone := range d.Milestones {
		mark := "[ ]"
		if milestone.Done {
			mark = theme.Good.Render("[x]")
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s", mark, milestone.Index+1, milestone.Title))
		if milestone.Estimate != "" {
			sb.WriteString(theme.Muted.Render("  (" + milestone.Estimate + ")"))
		}
		sb.WriteString("\n")
		if milestone.Description != "" {
			sb.WriteString(theme.Muted.Render("    "+milestone.Description) + "\n")
		}
		for _, resource := range milestone.Resources {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("    · %s: %s", resource.Type, resource.Title)) + "\n")
		}
	}
	return sb.String()
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) submitCmd() tea.Cmd {
	weeks, _ := strconv.Atoi(strings.TrimSpace(m.inputs[fieldWeeks].Value()))
	input := dto.GenerateInput{
		Topic:          strings.TrimSpace(m.inputs[fieldTopic].Value()),
		ExpertiseLevel: strings.TrimSpace(m.inputs[fieldExpertise].Value()),
		DurationWeeks:  weeks,
		TimeCommitment: strings.TrimSpace(m.inputs[fieldCommitment].Value()),
		LearningStyle:  strings.TrimSpace(m.inputs[fieldStyle].Value()),
		Goals:          splitGoals(m.inputs[fieldGoals].Value()),
	}
	return func() tea.Msg {
		out, err := m.port.Generate(context.Background(), input)
		return SubmittedMsg{Out: out, Err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.SaveCurrent(context.Background())
		return SavedMsg{Out: out, Err: err}
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(pollTickEvery, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func splitGoals(raw string) []string {
	var goals []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			goals = append(goals, trimmed)
		}
	}
	return goals
}
