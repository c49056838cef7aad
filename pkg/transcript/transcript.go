// Package transcript appends every user and assistant turn to a durable log
// file, independent of the in-memory conversation state.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger writes session-tagged transcript lines. Failures are reported to
// the operational log only; the chat turn never blocks on transcript errors.
type Logger struct {
	path      string
	sessionID string
	log       *zap.Logger
}

// New creates a transcript logger for the given file with a fresh session ID.
func New(path string, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		path:      path,
		sessionID: uuid.NewString(),
		log:       log,
	}
}

// SessionID returns the tag written on every line of this session.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Append writes one transcript line for a turn. Newlines in the text are
// escaped so a turn always occupies exactly one line.
func (l *Logger) Append(role, text string) {
	line := fmt.Sprintf("[%s] [%s] %s: %s\n",
		time.Now().Format(timeLayout), l.sessionID, role, flatten(text))
	l.write(line, os.O_APPEND|os.O_CREATE|os.O_WRONLY)
}

// Clear truncates the transcript and writes a single marker line carrying
// the clear timestamp.
func (l *Logger) Clear() {
	line := fmt.Sprintf("[%s] [%s] transcript cleared\n",
		time.Now().Format(timeLayout), l.sessionID)
	l.write(line, os.O_TRUNC|os.O_CREATE|os.O_WRONLY)
}

func (l *Logger) write(line string, flags int) {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			l.log.Warn("transcript directory not created", zap.String("dir", dir), zap.Error(err))
			return
		}
	}

	f, err := os.OpenFile(l.path, flags, 0o644)
	if err != nil {
		l.log.Warn("transcript not writable", zap.String("path", l.path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		l.log.Warn("transcript write failed", zap.String("path", l.path), zap.Error(err))
	}
}

func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", `\n`)
}
