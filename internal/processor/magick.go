package processor

import (
	"context"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/runner"
)

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*runner.Result, error)
}

// magick renders jobs by shelling out to an ImageMagick convert executable.
type magick struct {
	builder *command.Builder
	runner  commandRunner
}

func (m *magick) Convert(ctx context.Context, job model.Job) error {
	cmd := m.builder.Convert(job)

	zlog.Logger.Debug().Str("job_id", job.ID.String()).Str("command", cmd.String()).Msg("running convert")

	res, err := m.runner.Run(ctx, cmd.Path, cmd.Args...)
	if err != nil {
		return &model.ConversionError{Kind: model.ErrExecution, Command: cmd.String(), Output: err.Error()}
	}

	switch {
	case res.TimedOut:
		return &model.ConversionError{Kind: model.ErrTimeout, Command: cmd.String()}
	case res.ExitStatus != 0:
		return &model.ConversionError{Kind: model.ErrExecution, Command: cmd.String(), Output: string(res.Stderr)}
	}

	return nil
}
