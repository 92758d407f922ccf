package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ANSI colour codes — make terminal output easier to read while debugging
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
	grey   = "\033[90m"
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	colour            = true
	verbose           = false
)

// SetOutput redirects log lines. Colour codes are dropped unless w is stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	colour = w == os.Stdout
}

func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enabled
}

func ts() string {
	return time.Now().Format("15:04:05")
}

func write(col, level, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if colour {
		fmt.Fprintf(out, "%s[%s] %s %s%s\n", col, ts(), level, fmt.Sprintf(format, a...), reset)
		return
	}
	fmt.Fprintf(out, "[%s] %s %s\n", ts(), level, fmt.Sprintf(format, a...))
}

func Debug(format string, a ...interface{}) {
	mu.Lock()
	enabled := verbose
	mu.Unlock()
	if enabled {
		write(grey, "[DEBUG]", format, a...)
	}
}

func Info(format string, a ...interface{}) {
	write(blue, "[INFO] ", format, a...)
}

func Success(format string, a ...interface{}) {
	write(green, "[OK]   ", format, a...)
}

func Warn(format string, a ...interface{}) {
	write(yellow, "[WARN] ", format, a...)
}

func Error(format string, a ...interface{}) {
	write(red, "[ERROR]", format, a...)
}

func Section(title string) {
	mu.Lock()
	defer mu.Unlock()
	if colour {
		fmt.Fprintf(out, "\n%s[%s] ══════════ %s ══════════%s\n\n", cyan, ts(), title, reset)
		return
	}
	fmt.Fprintf(out, "\n[%s] ══════════ %s ══════════\n\n", ts(), title)
}
