package internal

import (
	"bufio"
	"errors"
	"io"
	"os/exec"

	"github.com/sesdev/sesdev/pkg/command"
)

// ProgressFunc receives chunks of command output as work proceeds. It must
// not panic; chunks end with a newline.
type ProgressFunc func(chunk string)

// RunCmdWithProgress runs a command and feeds its combined output, line by
// line, into the progress callback.
func RunCmdWithProgress(cmd command.IShellCommand, progress ProgressFunc) error {
	// Use pipes so we can output progress.
	stdout, _ := cmd.StdoutPipe()
	stderr, _ := cmd.StderrPipe()
	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(io.MultiReader(stdout, stderr))
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		progress(scanner.Text() + "\n")
	}
	return cmd.Wait()
}

// GetCmdStdErr extracts the captured stderr from a failed command, falling
// back to the plain error message.
func GetCmdStdErr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return string(exitErr.Stderr)
	}
	return err.Error()
}
