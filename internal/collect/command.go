package collect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// maxCommandOutput caps captured output per external command. Collectors
// read system inventories, not logs; anything bigger is a misbehaving
// source.
const maxCommandOutput = 10 << 20

// Runner executes an external command and returns its stdout. Collectors
// take a Runner so tests can substitute canned output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunCommand is the production Runner: single-shot execution under the
// context deadline, process killed on expiry, output capped. Continuous or
// streaming commands are out of contract here — every invocation must
// terminate within its bound.
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 2 * time.Second

	stdout := &cappedBuffer{limit: maxCommandOutput}
	stderr := &cappedBuffer{limit: 4096}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.buf.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if stdout.truncated {
		return nil, fmt.Errorf("%s: output exceeded %d bytes", name, maxCommandOutput)
	}
	return stdout.buf.Bytes(), nil
}

// cappedBuffer accepts writes up to limit and marks overflow instead of
// growing without bound.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.truncated = true
		b.buf.Write(p[:remaining])
		return len(p), nil
	}
	return b.buf.Write(p)
}
