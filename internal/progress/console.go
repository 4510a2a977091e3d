package progress

import (
	"fmt"

	"github.com/instytutkryptografii/lektor/internal/output"
)

// Console renders events to stdout: an in-place progress line plus styled
// log lines. This is the default sink for foreground runs.
type Console struct {
	inProgressLine bool
}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Update(op string, current, total int64, message string) {
	fmt.Printf("\r\033[K%s%s", output.ProgressBar(current, total, 30), output.FDebug(message))
	c.inProgressLine = true
}

func (c *Console) Log(level, message string) {
	c.breakProgressLine()
	switch level {
	case LevelError:
		output.PrintError(message)
	case LevelWarning:
		output.PrintWarning(message)
	case LevelDebug:
		output.PrintDebug(message)
	default:
		output.PrintInfo(message)
	}
}

func (c *Console) Complete(success bool, message string) {
	c.breakProgressLine()
	if success {
		output.PrintSuccess(fmt.Sprintf("%s %s", output.StyleSymbols["pass"], message))
	} else {
		output.PrintError(fmt.Sprintf("%s %s", output.StyleSymbols["fail"], message))
	}
}

func (c *Console) Error(message string, err error) {
	c.breakProgressLine()
	output.PrintError(message)
}

func (c *Console) breakProgressLine() {
	if c.inProgressLine {
		fmt.Println()
		c.inProgressLine = false
	}
}
