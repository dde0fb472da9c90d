package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pathlight/internal/modules/account/dto"
	"pathlight/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type AccountPort interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.SessionOutput, error)
	ContinueAsGuest(ctx context.Context) dto.SessionOutput
	Logout(ctx context.Context) (dto.SessionOutput, error)
	Current() dto.SessionOutput
}

// ─── messages ────────────────────────────────────────────────────────────────

// SessionChangedMsg is forwarded to the app model so other tabs can
// refresh against the new user's partition.
type SessionChangedMsg struct {
	Session dto.SessionOutput
	Err     error
}

// ─── form fields ─────────────────────────────────────────────────────────────

type fieldID int

const (
	fieldName fieldID = iota
	fieldEmail
	fieldPassword
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Email", "Password"}

// ─── model ───────────────────────────────────────────────────────────────────

type mode int

const (
	modeSession mode = iota
	modeLogin
	modeRegister
)

type Model struct {
	port AccountPort

	mode    mode
	inputs  [fieldCount]textinput.Model
	focused fieldID
	session dto.SessionOutput
	status  string
	width   int
	height  int
}

func New(port AccountPort) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 120
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	return Model{
		port:    port,
		session: port.Current(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SessionChangedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		m.session = msg.Session
		m.mode = modeSession
		m.status = ""
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}

	case tea.KeyMsg:
		switch m.mode {
		case modeSession:
			switch msg.String() {
			case "l":
				m.enterForm(modeLogin)
			case "r":
				m.enterForm(modeRegister)
			case "g":
				return m, m.guestCmd()
			case "o":
				if !m.session.Guest {
					return m, m.logoutCmd()
				}
			}
		case modeLogin, modeRegister:
			switch msg.String() {
			case "esc":
				m.mode = modeSession
				m.status = ""
				return m, nil
			case "enter":
				if m.focused == fieldCount-1 {
					return m, m.submitCmd()
				}
				m.focusNext()
				return m, nil
			case "down", "tab":
				m.focusNext()
				return m, nil
			case "up", "shift+tab":
				m.focusPrev()
				return m, nil
			}
			var cmd tea.Cmd
			m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	switch m.mode {
	case modeLogin:
		return m.viewForm("Sign in")
	case modeRegister:
		return m.viewForm("Create an account")
	default:
		return m.viewSession()
	}
}

func (m Model) viewSession() string {
	s := m.session
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Account") + "\n\n")
	if s.Guest {
		sb.WriteString("Browsing as " + theme.Hot.Render("guest") + "\n")
		sb.WriteString(theme.Muted.Render("Saved paths stay on this device until you sign in.") + "\n")
	} else {
		name := s.Name
		if name == "" {
			name = s.Email
		}
		sb.WriteString("Signed in as " + theme.Good.Render(name) + "\n")
		if s.Email != "" {
			sb.WriteString(theme.Muted.Render("email: ") + s.Email + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("%s%d", theme.Muted.Render("paths:  "), s.PathsLoaded))
	if s.FromRemote {
		sb.WriteString(theme.Muted.Render("  (synced)"))
	} else {
		sb.WriteString(theme.Muted.Render("  (local)"))
	}
	sb.WriteString("\n")
	if s.Warning != "" {
		sb.WriteString("\n" + theme.Bad.Render(s.Warning) + "\n")
	}
	sb.WriteString("\n")
	if s.Guest {
		sb.WriteString(theme.Muted.Render("l: sign in  r: register"))
	} else {
		sb.WriteString(theme.Muted.Render("o: sign out  g: continue as guest"))
	}
	if m.status != "" {
		sb.WriteString("\n\n" + theme.Bad.Render(m.status))
	}
	return theme.Pane.Width(m.width - 2).Render(sb.String())
}

func (m Model) viewForm(title string) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(title) + "\n\n")
	for i := fieldID(0); i < fieldCount; i++ {
		if m.mode == modeLogin && i == fieldName {
			continue
		}
		label := fieldLabels[i]
		if i == m.focused {
			sb.WriteString(theme.Hot.Render("› "+label) + "\n")
		} else {
			sb.WriteString(theme.Muted.Render("  "+label) + "\n")
		}
		sb.WriteString("  " + m.inputs[i].View() + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: next / submit  esc: back"))
	if m.status != "" {
		sb.WriteString("\n\n" + theme.Bad.Render(m.status))
	}
	return theme.Pane.Width(m.width - 2).Render(sb.String())
}

// Typing reports whether a credential form is consuming keystrokes, so
// the app model leaves global bindings alone.
func (m Model) Typing() bool {
	return m.mode != modeSession
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) enterForm(target mode) {
	m.mode = target
	m.status = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	if target == modeLogin {
		m.focused = fieldEmail
	} else {
		m.focused = fieldName
	}
	m.inputs[m.focused].Focus()
}

func (m *Model) focusNext() {
	m.setFocus(m.step(1))
}

func (m *Model) focusPrev() {
	m.setFocus(m.step(-1))
}

func (m *Model) step(delta fieldID) fieldID {
	next := (m.focused + delta + fieldCount) % fieldCount
	if m.mode == modeLogin && next == fieldName {
		next = (next + delta + fieldCount) % fieldCount
	}
	return next
}

func (m *Model) setFocus(id fieldID) {
	m.inputs[m.focused].Blur()
	m.focused = id
	m.inputs[m.focused].Focus()
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) submitCmd() tea.Cmd {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	register := m.mode == modeRegister
	return func() tea.Msg {
		var (
			session dto.SessionOutput
			err     error
		)
		if register {
			session, err = m.port.Register(context.Background(), dto.RegisterInput{Name: name, Email: email, Password: password})
		} else {
			session, err = m.port.Login(context.Background(), dto.LoginInput{Email: email, Password: password})
		}
		return SessionChangedMsg{Session: session, Err: err}
	}
}

func (m Model) guestCmd() tea.Cmd {
	return func() tea.Msg {
		return SessionChangedMsg{Session: m.port.ContinueAsGuest(context.Background())}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.port.Logout(context.Background())
		return SessionChangedMsg{Session: session, Err: err}
	}
}
