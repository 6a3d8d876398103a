// Package optimizer runs lossless size optimizers over rendered images.
package optimizer

import (
	"context"
	"os/exec"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/runner"
)

// DefaultTools maps output formats to optimizer invocations. The image path
// is appended as the last argument.
var DefaultTools = map[string][]string{
	"jpg": {"jpegoptim", "--strip-all", "--all-progressive", "--quiet"},
	"png": {"optipng", "-quiet", "-o2"},
	"gif": {"gifsicle", "--batch", "-O2"},
}

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*runner.Result, error)
}

// Optimizer rewrites files in place with per-format external tools.
type Optimizer struct {
	tools    map[string][]string
	runner   commandRunner
	lookPath func(string) (string, error)
}

// New creates an Optimizer. A nil tools map uses DefaultTools.
func New(tools map[string][]string, r commandRunner) *Optimizer {
	if tools == nil {
		tools = DefaultTools
	}
	return &Optimizer{tools: tools, runner: r, lookPath: exec.LookPath}
}

// Optimize runs the tool configured for format over path. Formats without a
// tool, or whose tool is not installed, are left alone.
func (o *Optimizer) Optimize(ctx context.Context, path, format string) error {
	tool, ok := o.tools[format]
	if !ok || len(tool) == 0 {
		return nil
	}

	bin, err := o.lookPath(tool[0])
	if err != nil {
		zlog.Logger.Debug().Str("tool", tool[0]).Msg("optimizer not installed, skipping")
		return nil
	}

	cmd := command.Command{Path: bin, Args: append(append([]string{}, tool[1:]...), path)}

	res, err := o.runner.Run(ctx, cmd.Path, cmd.Args...)
	if err != nil {
		return &model.ConversionError{Kind: model.ErrExecution, Command: cmd.String(), Output: err.Error()}
	}
	if res.TimedOut {
		return &model.ConversionError{Kind: model.ErrTimeout, Command: cmd.String()}
	}
	if res.ExitStatus != 0 {
		return &model.ConversionError{Kind: model.ErrExecution, Command: cmd.String(), Output: string(res.Stderr)}
	}

	zlog.Logger.Debug().Str("tool", tool[0]).Str("path", path).Dur("elapsed", res.Duration).Msg("image optimized")

	return nil
}
