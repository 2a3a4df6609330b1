package ccusage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

// ErrNotConfigured means setup has not selected a runtime yet.
var ErrNotConfigured = errors.New("ccusage runtime is not configured; run `ccmeter setup`")

type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// InvokeError is the only error type produced by a failed invocation.
type InvokeError struct {
	Kind    ErrorKind
	Runtime settings.RuntimeType
	Message string
	Stderr  string
	Err     error
}

func (e *InvokeError) Error() string { return e.Message }

func (e *InvokeError) Unwrap() error { return e.Err }

// IsKind reports whether err is an InvokeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ie *InvokeError
	return errors.As(err, &ie) && ie.Kind == kind
}

const setupHint = "Run `ccmeter setup` to choose a different runtime or set a custom path."

// Classify maps a process failure to an InvokeError. ctxErr is the context
// error observed after the process exited, if any.
func Classify(err error, ctxErr error, rt settings.RuntimeType, stderr string) *InvokeError {
	if err == nil {
		return nil
	}
	stderr = strings.TrimSpace(stderr)
	out := &InvokeError{Runtime: rt, Stderr: stderr, Err: err}

	lower := strings.ToLower(stderr + " " + err.Error())
	var exitErr *exec.ExitError

	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		out.Kind = KindTimeout
		out.Message = fmt.Sprintf("ccusage timed out while running via %s. %s", rt, setupHint)
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		out.Kind = KindNotFound
		out.Message = fmt.Sprintf("%s executable not found. Install %s or configure its path. %s", rt, rt, setupHint)
	case errors.Is(err, fs.ErrPermission):
		out.Kind = KindPermissionDenied
		out.Message = fmt.Sprintf("Permission denied running %s. Check that the executable is runnable by the current user.", rt)
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 127,
		strings.Contains(lower, "command not found"):
		out.Kind = KindNotFound
		out.Message = fmt.Sprintf("%s executable not found. Install %s or configure its path. %s", rt, rt, setupHint)
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 126,
		strings.Contains(lower, "eacces"), strings.Contains(lower, "permission denied"):
		out.Kind = KindPermissionDenied
		out.Message = fmt.Sprintf("Permission denied running %s. Check that the executable is runnable by the current user.", rt)
	default:
		out.Kind = KindOther
		detail := err.Error()
		if stderr != "" {
			detail = detail + ": " + firstLine(stderr)
		}
		out.Message = fmt.Sprintf("ccusage failed via %s: %s. %s", rt, detail, setupHint)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
