package ccusage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

// Command is one resolved process launch.
type Command struct {
	Path string
	Args []string // without Path
	Env  []string
	Dir  string
}

// Runner starts a command and streams its output; tests substitute it.
type Runner func(ctx context.Context, cmd Command, stdout, stderr io.Writer) error

func execRunner(ctx context.Context, c Command, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

type Result struct {
	Argv      []string
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Truncated bool
}

// Invoker runs ccusage with a bounded timeout and capped output buffers.
// It never retries.
type Invoker struct {
	Package        string
	Timeout        time.Duration
	MaxOutputBytes int

	run          Runner
	home         string
	baseEnv      func() []string
	appleSilicon bool
}

func NewInvoker(cfg config.InvokerConfig) *Invoker {
	home, _ := os.UserHomeDir()
	return &Invoker{
		Package:        cfg.Package,
		Timeout:        cfg.Timeout(),
		MaxOutputBytes: cfg.MaxOutputBytes,
		run:            execRunner,
		home:           home,
		baseEnv:        os.Environ,
		appleSilicon:   IsAppleSilicon(),
	}
}

// WithRunner returns a copy of the invoker using r to start processes.
func (inv *Invoker) WithRunner(r Runner) *Invoker {
	cp := *inv
	cp.run = r
	return &cp
}

// Run executes ccusage with args using the runtime in rs.
func (inv *Invoker) Run(ctx context.Context, rs settings.RuntimeSettings, args ...string) (Result, error) {
	argv := BuildCommand(rs, inv.Package, args...)
	result := Result{Argv: argv}

	env := Environment(inv.baseEnv(), inv.home, inv.appleSilicon)
	path, err := inv.resolve(argv[0], envValue(env, "PATH"))
	if err != nil {
		return result, Classify(err, nil, rs.SelectedRuntime, "")
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := newCappedBuffer(inv.MaxOutputBytes)
	stderr := newCappedBuffer(inv.MaxOutputBytes)

	log.Printf("[ccusage] running %s", strings.Join(argv, " "))
	start := time.Now()
	err = inv.run(runCtx, Command{Path: path, Args: argv[1:], Env: env, Dir: inv.home}, stdout, stderr)
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Truncated = stdout.truncated || stderr.truncated

	if err != nil {
		ie := Classify(err, runCtx.Err(), rs.SelectedRuntime, result.Stderr)
		log.Printf("[ccusage] %s failed after %s (%s): %v", argv[len(argv)-1], result.Duration.Round(time.Millisecond), ie.Kind, err)
		return result, ie
	}

	log.Printf("[ccusage] finished in %s (%d bytes)", result.Duration.Round(time.Millisecond), len(result.Stdout))
	if result.Truncated {
		log.Printf("[ccusage] output exceeded %d bytes and was truncated", inv.MaxOutputBytes)
	}
	return result, nil
}

// resolve finds the runtime executable on the child's PATH. Bare names
// fall back to the process PATH so platform suffixes (.cmd, .exe) resolve.
func (inv *Invoker) resolve(name, pathValue string) (string, error) {
	if p, ok := lookPathIn(name, pathValue); ok {
		return p, nil
	}
	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, os.PathSeparator) {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// cappedBuffer keeps the first limit bytes written and discards the rest
// while reporting full writes, so the child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.limit <= 0 {
		return c.buf.Write(p)
	}
	remaining := c.limit - c.buf.Len()
	if remaining <= 0 {
		c.truncated = c.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > remaining {
		c.buf.Write(p[:remaining])
		c.truncated = true
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) String() string { return c.buf.String() }
