package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field describes one input of a [form].
type field struct {
	label       string
	placeholder string
	secret      bool
}

// form is a vertical stack of text inputs with a single focused input.
type form struct {
	fields []field
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...field) form {
	f := form{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.placeholder
		ti.Prompt = "> "
		ti.CharLimit = 128
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.inputs[i] = ti
	}
	return f
}

// Focus moves focus to input i and blurs the rest.
func (f *form) Focus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *form) Next() tea.Cmd { return f.Focus(f.focus + 1) }
func (f *form) Prev() tea.Cmd { return f.Focus(f.focus - 1) }

// Last reports whether the final input has focus.
func (f *form) Last() bool { return f.focus == len(f.inputs)-1 }

func (f *form) Value(i int) string { return f.inputs[i].Value() }

func (f *form) SetValue(i int, v string) { f.inputs[i].SetValue(v) }

// Reset clears every input and focuses the first.
func (f *form) Reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	return f.Focus(0)
}

// Update forwards msg to the focused input.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) View() string {
	var b strings.Builder
	for i, fd := range f.fields {
		b.WriteString(styles.label.Render(fd.label))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	return b.String()
}
