package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"go.uber.org/zap"
)

const logBuffer = 256

// Logs replays the panel log from the first entry and follows new entries
// until ctx is done or the coordinator is closed.
func (c *Coordinator) Logs(ctx context.Context) <-chan lib.LogEntry {
	return c.logs.Subscribe(ctx, logBuffer)
}

// LogTail returns at most n of the latest log entries.
func (c *Coordinator) LogTail(n int) []lib.LogEntry {
	return c.logs.Tail(n)
}

func (c *Coordinator) logf(source lib.LogSource, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	c.logMu.Lock()
	c.logSeq++
	entry := lib.LogEntry{
		Seq:     c.logSeq,
		Time:    time.Now(),
		Source:  source,
		Message: msg,
	}
	c.logs.Append(entry)
	c.logMu.Unlock()

	c.logger.Info(entry.Message, zap.String("source", string(source)), zap.Uint64("seq", entry.Seq))
}
