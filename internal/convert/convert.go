package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"kiln/internal/services"
)

const defaultBinary = "oiiotool"

// Client converts one image file into another format chosen by the target
// path's extension.
type Client interface {
	Convert(ctx context.Context, source, target string) error
}

// Executor abstracts command execution for the CLI client.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// CLI shells out to an image conversion tool. The default invocation is
// oiiotool style: binary <source> [extra args] -o <target>.
type CLI struct {
	binary  string
	args    []string
	timeout time.Duration
	exec    Executor
}

// Option configures a CLI client.
type Option func(*CLI)

// WithArgs inserts extra arguments between the source and the output flag.
func WithArgs(args ...string) Option {
	return func(c *CLI) {
		c.args = append([]string(nil), args...)
	}
}

// WithTimeout bounds each conversion. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// WithExecutor injects a custom executor for testing.
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// NewCLI constructs a client for the provided conversion binary. An empty
// binary falls back to oiiotool.
func NewCLI(binary string, opts ...Option) *CLI {
	c := &CLI{binary: strings.TrimSpace(binary), exec: commandExecutor{}}
	if c.binary == "" {
		c.binary = defaultBinary
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured conversion binary.
func (c *CLI) Binary() string { return c.binary }

// Convert runs the conversion tool for a single source/target pair, creating
// the target directory first.
func (c *CLI) Convert(ctx context.Context, source, target string) error {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" {
		return errors.New("convert: empty source path")
	}
	if target == "" {
		return errors.New("convert: empty target path")
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("convert: create target directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(c.args)+3)
	args = append(args, source)
	args = append(args, c.args...)
	args = append(args, "-o", target)

	output, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "convert", c.binary, detail, err)
		}
		return services.Wrap(services.ErrExternalTool, "convert", c.binary, detail, err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
