package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bsoncodec/datetime"
	"github.com/wippyai/bsoncodec/text"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(10)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// inspection is what the TUI shows for one input line.
type inspection struct {
	err      error
	verdict  text.Verdict
	escaped  string
	calendar string
	millis   string
}

// inspect runs every conversion that applies to value. Integers are treated
// as epoch milliseconds and RFC 3339 timestamps as calendar input.
func inspect(value string, allowNul bool, off *datetime.FixedOffset) inspection {
	res := inspection{verdict: text.ValidateString(value, allowNul)}

	if err := text.Check([]byte(value), true); err != nil {
		res.err = err
	} else if escaped, err := text.Escape([]byte(value)); err != nil {
		res.err = err
	} else {
		res.escaped = string(escaped)
		text.Release(escaped)
	}

	v := strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if in, err := datetime.Localize(ms, off); err != nil {
			res.calendar = err.Error()
		} else {
			res.calendar = in.String()
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		if ms, err := datetime.EpochMillis(t); err != nil {
			res.millis = err.Error()
		} else {
			res.millis = strconv.FormatInt(ms, 10)
		}
	}
	return res
}

type interactiveModel struct {
	offset   *datetime.FixedOffset
	input    textinput.Model
	result   inspection
	allowNul bool
}

func newInteractiveModel(allowNul bool, off *datetime.FixedOffset) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `text, epoch ms, or 2006-01-02T15:04:05Z`
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	m := &interactiveModel{offset: off, input: ti, allowNul: allowNul}
	m.refresh()
	return m
}

func (m *interactiveModel) refresh() {
	m.result = inspect(m.input.Value(), m.allowNul, m.offset)
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+n":
			m.allowNul = !m.allowNul
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("BSON Codec"))
	if m.offset != nil {
		b.WriteString(" ")
		b.WriteString(m.offset.String())
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	verdict := resultStyle.Render(m.result.verdict.String())
	if m.result.verdict != text.Valid {
		verdict = errorStyle.Render(m.result.verdict.String())
	}
	row(&b, "utf-8", verdict)

	if m.result.err != nil {
		row(&b, "escaped", errorStyle.Render(m.result.err.Error()))
	} else {
		row(&b, "escaped", resultStyle.Render(m.result.escaped))
	}
	if m.result.calendar != "" {
		row(&b, "calendar", resultStyle.Render(m.result.calendar))
	}
	if m.result.millis != "" {
		row(&b, "epoch ms", resultStyle.Render(m.result.millis))
	}

	nul := "rejected"
	if m.allowNul {
		nul = "allowed"
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("NUL %s • ctrl+n toggle NUL • esc quit", nul)))
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func runInteractive(allowNul bool, off *datetime.FixedOffset) error {
	p := tea.NewProgram(newInteractiveModel(allowNul, off), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
