package client

import (
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/beeep"
	"github.com/mattn/go-isatty"
)

// Notifier surfaces clock transition outcomes to the user.
type Notifier interface {
	Success(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

type NopNotifier struct{}

func (NopNotifier) Success(title, message string) {}
func (NopNotifier) Warning(title, message string) {}
func (NopNotifier) Error(title, message string)   {}

// DesktopNotifier raises OS notifications. Failures to notify are ignored;
// a missed toast must never fail the transition itself.
type DesktopNotifier struct{}

func (DesktopNotifier) Success(title, message string) {
	_ = beeep.Notify(title, message, "")
}

func (DesktopNotifier) Warning(title, message string) {
	_ = beeep.Notify(title, message, "")
}

func (DesktopNotifier) Error(title, message string) {
	_ = beeep.Alert(title, message, "")
}

// TerminalNotifier prints transitions to the terminal, with color only when
// stdout is a TTY.
type TerminalNotifier struct {
	Out   io.Writer
	Color bool
}

func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{
		Out:   os.Stdout,
		Color: isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (n *TerminalNotifier) Success(title, message string) {
	n.printf("32", title, message)
}

func (n *TerminalNotifier) Warning(title, message string) {
	n.printf("33", title, message)
}

func (n *TerminalNotifier) Error(title, message string) {
	n.printf("31", title, message)
}

func (n *TerminalNotifier) printf(colorCode, title, message string) {
	if n.Color {
		fmt.Fprintf(n.Out, "\x1b[%sm%s\x1b[0m %s\n", colorCode, title, message)
	} else {
		fmt.Fprintf(n.Out, "%s %s\n", title, message)
	}
}

// MultiNotifier fans out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Success(title, message string) {
	for _, n := range m {
		n.Success(title, message)
	}
}

func (m MultiNotifier) Warning(title, message string) {
	for _, n := range m {
		n.Warning(title, message)
	}
}

func (m MultiNotifier) Error(title, message string) {
	for _, n := range m {
		n.Error(title, message)
	}
}
