package main

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/generator"
	"github.com/wippyai/staticassert/verify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	verbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	holdsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateDetail
)

// row is one line of the findings list.
type row struct {
	finding *verify.Finding
	err     *errors.Error
	file    string
	text    string
}

// where is the short position shown in the list.
func (r row) where() string {
	switch {
	case r.finding != nil:
		return fmt.Sprintf("%s:%d", filepath.Base(r.file), r.finding.Directive.Pos.Line)
	case r.err != nil && r.err.Pos != "":
		return filepath.Base(r.err.Pos)
	}
	return "-"
}

func (r row) failed() bool {
	return r.err != nil && (r.finding == nil || !r.finding.Warning)
}

type interactiveModel struct {
	res      *generator.Result
	rows     []row
	visible  []int
	filter   textinput.Model
	selected int
	state    modelState
	onlyFail bool
}

// rowsOf lists the findings of res, plus errors that have no finding such
// as malformed directives.
func rowsOf(res *generator.Result, runErr error) []row {
	var rows []row
	seen := map[string]bool{}
	for _, f := range res.Report.Findings {
		r := row{
			finding: f,
			err:     f.Err(),
			file:    f.Directive.Pos.Filename,
			text:    f.Directive.String(),
		}
		if r.err != nil {
			seen[r.err.Error()] = true
		}
		rows = append(rows, r)
	}

	var v *errors.ViolationsError
	if stderrors.As(runErr, &v) {
		for _, e := range v.Errors {
			if seen[e.Error()] {
				continue
			}
			rows = append(rows, row{err: e, file: fileOf(e.Pos), text: e.Verb})
		}
	} else if runErr != nil {
		rows = append(rows, row{err: errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, runErr, "")})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].file < rows[j].file })
	return rows
}

func fileOf(pos string) string {
	for i := 0; i < 2; i++ {
		j := strings.LastIndexByte(pos, ':')
		if j < 0 {
			break
		}
		pos = pos[:j]
	}
	return pos
}

func newInteractiveModel(res *generator.Result, runErr error) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "file or verb"
	ti.Prompt = "filter: "
	ti.Width = 40

	m := &interactiveModel{
		res:    res,
		rows:   rowsOf(res, runErr),
		filter: ti,
		state:  stateList,
	}
	m.refilter()
	return m
}

// refilter recomputes the visible rows from the filter text.
func (m *interactiveModel) refilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if m.onlyFail && r.err == nil {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.file+" "+r.text), q) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateFilter {
		switch key.String() {
		case "enter", "esc":
			m.filter.Blur()
			m.state = stateList
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refilter()
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.state == stateList && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateList && m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "f":
		if m.state == stateList {
			m.onlyFail = !m.onlyFail
			m.refilter()
		}

	case "/":
		if m.state == stateList {
			m.state = stateFilter
			return m, m.filter.Focus()
		}

	case "enter":
		switch m.state {
		case stateList:
			if len(m.visible) > 0 {
				m.state = stateDetail
			}
		case stateDetail:
			m.state = stateList
		}

	case "esc":
		if m.state == stateDetail {
			m.state = stateList
		}
	}
	return m, nil
}

func (m *interactiveModel) current() row {
	return m.rows[m.visible[m.selected]]
}

func (m *interactiveModel) status(r row) string {
	switch {
	case r.err == nil:
		return holdsStyle.Render("ok  ")
	case r.failed():
		return errorStyle.Render("FAIL")
	default:
		return warnStyle.Render("warn")
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("staticassert"))
	fmt.Fprintf(&b, " %d directive(s), %d output file(s)\n\n", m.res.Directives, len(m.res.Outputs))

	switch m.state {
	case stateList, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString("No findings.\n")
		}
		for i, idx := range m.visible {
			r := m.rows[idx]
			line := fmt.Sprintf("%s %s %s", m.status(r), r.where(), verbStyle.Render(r.text))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • f failures only • q quit"))

	case stateDetail:
		r := m.current()
		if r.finding != nil {
			d := r.finding.Directive
			fmt.Fprintf(&b, "%s\n%s\n\n", verbStyle.Render(d.String()), d.Pos)
			fmt.Fprintf(&b, "status: %s\n", r.finding.Status)
		}
		if r.err != nil {
			b.WriteString(m.status(r))
			b.WriteString(" ")
			b.WriteString(r.err.Error())
			b.WriteString("\n")
		}
		if outs := m.outputsFor(r.file); len(outs) > 0 {
			b.WriteString("\ngenerated:\n")
			for _, o := range outs {
				b.WriteString("  " + o + "\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

// outputsFor lists the generated files that belong to source file name.
func (m *interactiveModel) outputsFor(name string) []string {
	if name == "" {
		return nil
	}
	var out []string
	base := filepath.Base(name)
	for path := range m.res.Outputs {
		if filepath.Dir(path) == filepath.Dir(name) && strings.HasSuffix(filepath.Base(path), "_"+base) {
			out = append(out, filepath.Base(path))
		}
	}
	sort.Strings(out)
	return out
}

func runInteractive(res *generator.Result, runErr error) error {
	p := tea.NewProgram(newInteractiveModel(res, runErr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
