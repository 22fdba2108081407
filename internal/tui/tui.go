// Package tui implements crush view: a scrollable terminal viewer for a
// materialized Table or a running TableStream, plus a drill-down browser
// for the nested sub-streams a group command's output carries. It uses
// bubbletea's Elm architecture (Model/Init/Update/View) with a
// bubbles/table viewport and a stack of frames the user can push into
// and pop back out of.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"crush/internal/lang"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// frame is one level of the drill-down stack: a materialized table and
// the column index (if any) that holds nested Stream values a user may
// descend into.
type frame struct {
	title      string
	schema     lang.Schema
	rows       []lang.Row
	streamCols []int
}

func newFrame(title string, schema lang.Schema, rows []lang.Row) frame {
	var streamCols []int
	for i, c := range schema {
		if c.Type.Kind == lang.KindStream || c.Type.Kind == lang.KindTableStream {
			streamCols = append(streamCols, i)
		}
	}
	return frame{title: title, schema: schema, rows: rows, streamCols: streamCols}
}

func (f frame) columns() []table.Column {
	cols := make([]table.Column, len(f.schema))
	for i, c := range f.schema {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("col%d", i)
		}
		width := len(name) + 2
		if width < 8 {
			width = 8
		}
		cols[i] = table.Column{Title: name, Width: width}
	}
	return cols
}

func (f frame) tableRows() []table.Row {
	rows := make([]table.Row, len(f.rows))
	for i, r := range f.rows {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = v.String()
		}
		rows[i] = cells
	}
	return rows
}

// model is the bubbletea Model backing crush view: a single focused
// widget (a table.Model) plus the navigation state around it.
type model struct {
	stack []frame
	view  table.Model
}

func newModel(initial frame) model {
	m := model{stack: []frame{initial}}
	m.view = buildTable(initial)
	return m
}

func buildTable(f frame) table.Model {
	t := table.New(
		table.WithColumns(f.columns()),
		table.WithRows(f.tableRows()),
		table.WithFocused(true),
	)
	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true)
	style.Selected = style.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(style)
	return t
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if next, ok := m.drillDown(); ok {
				m.stack = append(m.stack, next)
				m.view = buildTable(next)
			}
			return m, nil
		case "backspace", "esc":
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
				m.view = buildTable(m.stack[len(m.stack)-1])
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// drillDown materializes the Stream/TableStream in the currently
// selected row's first stream-typed column into a new frame, the way
// selecting a "group" row should let a user browse that key's bucket.
func (m model) drillDown() (frame, bool) {
	top := m.stack[len(m.stack)-1]
	if len(top.streamCols) == 0 {
		return frame{}, false
	}
	idx := m.view.Cursor()
	if idx < 0 || idx >= len(top.rows) {
		return frame{}, false
	}
	row := top.rows[idx]
	col := top.streamCols[0]
	v := row[col]

	var schema lang.Schema
	var src rowReader
	switch v.Kind {
	case lang.KindStream:
		s, _ := v.Stream()
		schema = s.Schema()
		src = s
	case lang.KindTableStream:
		ts, _ := v.TableStream()
		schema = ts.Schema()
		src = ts
	default:
		return frame{}, false
	}

	rows, err := drainRows(src)
	if err != nil {
		return frame{}, false
	}
	title := fmt.Sprintf("%s[%d].%s", top.title, idx, top.schema[col].Name)
	return newFrame(title, schema, rows), true
}

// rowReader is the minimal shape both *lang.Stream and *lang.TableStream
// satisfy, narrowed to just Read since their Schema() is already
// resolved by the caller before wrapping.
type rowReader interface {
	Read() (lang.Row, error)
}

func drainRows(src interface{ Read() (lang.Row, error) }) ([]lang.Row, error) {
	var rows []lang.Row
	for {
		row, err := src.Read()
		if err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, err
		}
		rows = append(rows, row)
	}
}

func (m model) View() string {
	top := m.stack[len(m.stack)-1]
	header := headerStyle.Render(top.title)
	footer := footerStyle.Render("enter: drill in   esc/backspace: back   q: quit")
	return header + "\n" + m.view.View() + "\n" + footer
}

// ViewTable launches the scrollable viewer over an already-materialized
// Table.
func ViewTable(t *lang.Table) error {
	f := newFrame("table", t.Schema, t.Rows)
	_, err := tea.NewProgram(newModel(f)).Run()
	return err
}

// ViewStream drains ts fully, then launches the scrollable viewer over
// the result — crush view's TableStream entry point. Draining up front
// keeps the viewer itself synchronous, matching bubbletea's Update/View
// contract; internal/streamio's channel layer is what keeps the
// producing pipeline from blocking while this drains it.
func ViewStream(ts *lang.TableStream) error {
	rows, err := drainRows(ts)
	if err != nil {
		return err
	}
	f := newFrame("stream", ts.Schema(), rows)
	_, err = tea.NewProgram(newModel(f)).Run()
	return err
}
