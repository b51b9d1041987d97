package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgJobDone
)

type jobResult struct {
	rows int
	err  error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// jobDoneMsg is the constructor for [MsgJobDone]
func jobDoneMsg(rows int, err error) Msg {
	return Msg{kind: MsgJobDone, data: jobResult{rows: rows, err: err}}
}
