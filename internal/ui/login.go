package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"catalogadmin/internal/ui/views"
)

// loginScreen collects credentials. It only edits; the model decides what
// submitting means.
type loginScreen struct {
	inputs  []textinput.Model
	focus   int
	pending bool
	err     string
}

func newLoginScreen(username string) *loginScreen {
	user := textinput.New()
	user.Prompt = "Username: "
	user.CharLimit = 150
	user.SetValue(username)

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	s := &loginScreen{inputs: []textinput.Model{user, pass}}
	if username != "" {
		s.focus = 1
	}
	return s
}

func (s *loginScreen) Init() tea.Cmd {
	return s.inputs[s.focus].Focus()
}

func (s *loginScreen) credentials() (string, string) {
	return strings.TrimSpace(s.inputs[0].Value()), s.inputs[1].Value()
}

func (s *loginScreen) setFocus(i int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

// Update returns submit=true when the user asked to log in with complete
// credentials
func (s *loginScreen) Update(msg tea.Msg) (cmd tea.Cmd, submit bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return s.setFocus(s.focus + 1), false
		case "shift+tab", "up":
			return s.setFocus(s.focus - 1), false
		case "enter":
			if s.pending {
				return nil, false
			}
			user, pass := s.credentials()
			switch {
			case user == "":
				s.err = "username is required"
				return s.setFocus(0), false
			case pass == "":
				if s.focus == 0 {
					return s.setFocus(1), false
				}
				s.err = "password is required"
				return nil, false
			}
			s.err = ""
			s.pending = true
			return nil, true
		}
	}
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd, false
}

// fail shows a login error and clears the password
func (s *loginScreen) fail(msg string) tea.Cmd {
	s.pending = false
	s.err = msg
	s.inputs[1].Reset()
	return s.setFocus(1)
}

func (s *loginScreen) View(styles *views.Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Sign in to the catalog"))
	b.WriteString("\n\n")
	b.WriteString(s.inputs[0].View())
	b.WriteString("\n")
	b.WriteString(s.inputs[1].View())
	b.WriteString("\n\n")
	switch {
	case s.pending:
		b.WriteString(styles.Dim.Render("Signing in..."))
	case s.err != "":
		b.WriteString(styles.StatusError.Render(s.err))
	default:
		b.WriteString(styles.Dim.Render("enter sign in • tab switch field • ctrl+c quit"))
	}
	return b.String()
}
