package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/models"
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
	MsgSessionRestored MsgKind = iota
	MsgLoginFinished
	MsgLoggedOut
)

type loginResult struct {
	user *models.User
	err  error
}

// sessionRestoredMsg is the constructor for [MsgSessionRestored]; s is nil when no valid session was stored
func sessionRestoredMsg(s *models.Session) Msg {
	return Msg{kind: MsgSessionRestored, data: s}
}

// loginFinishedMsg is the constructor for [MsgLoginFinished]
func loginFinishedMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgLoginFinished, data: loginResult{user, err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}
