package toolchain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/lexcodex/headerlint/framework"
)

// ErrBuildScriptMissing is returned when the engine install has no Build.bat.
var ErrBuildScriptMissing = errors.New("engine build script not found")

type commandFactory func(ctx context.Context, name string, args ...string) *exec.Cmd

// Regenerator regenerates IDE project files for a .uproject by running the
// engine's Build.bat. Output lines are forwarded as EventToolOutput events.
type Regenerator struct {
	engineSource string
	sink         framework.Telemetry
	command      commandFactory
}

// NewRegenerator targets the engine whose Source directory is engineSource.
func NewRegenerator(engineSource string, sink framework.Telemetry) *Regenerator {
	return &Regenerator{
		engineSource: engineSource,
		sink:         sink,
		command:      exec.CommandContext,
	}
}

// BuildScript is <EngineSource>/../Build/BatchFiles/Build.bat.
func BuildScript(engineSource string) string {
	engineDir := filepath.Dir(filepath.Clean(engineSource))
	return filepath.Join(engineDir, "Build", "BatchFiles", "Build.bat")
}

// Args returns the generator arguments for uproject.
func Args(uproject string) []string {
	return []string{"-projectfiles", "-project=" + uproject, "-game", "-rocket", "-progress"}
}

// Run executes the generator and waits for it. A non-zero exit is an error.
func (r *Regenerator) Run(ctx context.Context, uproject string) error {
	script := BuildScript(r.engineSource)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("%w: %s", ErrBuildScriptMissing, script)
	}
	cmd := r.command(ctx, script, Args(uproject)...)
	cmd.Dir = filepath.Dir(uproject)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", script, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go r.stream(&wg, "stdout", stdout)
	go r.stream(&wg, "stderr", stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d: %w", filepath.Base(script), exitErr.ExitCode(), err)
		}
		return err
	}
	return nil
}

func (r *Regenerator) stream(wg *sync.WaitGroup, name string, rd io.Reader) {
	defer wg.Done()
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		framework.Emit(r.sink, framework.Event{
			Type:     framework.EventToolOutput,
			Message:  scanner.Text(),
			Metadata: map[string]interface{}{"stream": name},
		})
	}
	if err := scanner.Err(); err != nil {
		framework.Emit(r.sink, framework.Event{
			Type:     framework.EventToolOutput,
			Message:  fmt.Sprintf("%s output dropped: %v", name, err),
			Metadata: map[string]interface{}{"stream": name, "error": true},
		})
	}
	// The child blocks on a full pipe until it is drained.
	_, _ = io.Copy(io.Discard, rd)
}
