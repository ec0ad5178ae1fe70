package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandCompleter runs a local CLI with the prompt as its final argument,
// e.g. gemini -p <prompt>.
type CommandCompleter struct {
	Command []string
}

// CommandError is a failed CLI run. The CLI reports failures on stderr, so
// any stderr mentioning an error counts even with a zero exit status.
type CommandError struct {
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if e.Err != nil {
		if msg == "" {
			return fmt.Sprintf("completion command failed: %v", e.Err)
		}
		return fmt.Sprintf("completion command failed: %v: %s", e.Err, msg)
	}
	return fmt.Sprintf("completion command reported an error: %s", msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (c *CommandCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.Command) == 0 {
		return "", errors.New("no completion command configured")
	}

	args := append(append([]string{}, c.Command[1:]...), prompt)
	cmd := exec.CommandContext(ctx, c.Command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	errOut := stderr.String()
	if err != nil || strings.Contains(errOut, "Error") || strings.Contains(errOut, "error") {
		return "", &CommandError{Stderr: errOut, Err: err}
	}

	return stdout.String(), nil
}
