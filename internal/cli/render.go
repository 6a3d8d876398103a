package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-converter/internal/config"
	"github.com/aliskhannn/image-converter/internal/processor"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	configPath  string
	executable  string
	backend     string
	background  string
	quality     int
	optimize    bool
	timeout     time.Duration
	actions     []string
	actionsJSON string
}

func (o renderOpts) processorOptions(cmd *cobra.Command) (processor.Options, error) {
	opts := processor.Options{
		Executable: o.executable,
		Backend:    o.backend,
		Background: o.background,
		Quality:    o.quality,
		Optimize:   o.optimize,
		Timeout:    o.timeout,
	}

	if o.configPath == "" {
		return opts, nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return opts, fmt.Errorf("load config: %w", err)
	}

	// explicit flags win over the file
	g := cfg.Graphics
	if !cmd.Flags().Changed("executable") {
		opts.Executable = g.Executable
	}
	if !cmd.Flags().Changed("backend") {
		opts.Backend = g.Backend
	}
	if !cmd.Flags().Changed("background") {
		opts.Background = g.Background
	}
	if !cmd.Flags().Changed("quality") {
		opts.Quality = g.Quality
	}
	if !cmd.Flags().Changed("optimize") {
		opts.Optimize = g.Optimize
	}
	if !cmd.Flags().Changed("timeout") {
		opts.Timeout = g.Timeout
	}
	opts.Tools = g.Optimizers

	return opts, nil
}

func addGraphicsFlags(cmd *cobra.Command, o *renderOpts) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "yaml config to take graphics settings from")
	f.StringVar(&o.executable, "executable", "convert", "ImageMagick convert or magick binary")
	f.StringVar(&o.backend, "backend", processor.BackendMagick, "rendering backend: magick or native")
	f.StringVar(&o.background, "background", "transparent", "#hex color, checkerboard or transparent")
	f.IntVar(&o.quality, "quality", 85, "output quality")
	f.BoolVar(&o.optimize, "optimize", false, "run external optimizers on the result")
	f.DurationVar(&o.timeout, "timeout", time.Minute, "budget per tool invocation, 0 disables")
}

func newRenderCmd() *cobra.Command {
	var o renderOpts

	cmd := &cobra.Command{
		Use:   "render <input> <output>",
		Short: "Render an image through an action list",
		Example: `  graphicsctl render in.jpg out.png -a crop-800x600 -a thumb-200x200
  graphicsctl render in.png out.webp --actions-json '[{"kind":"thumbfill","width":200,"height":100,"center_x":0}]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := parseActions(o.actions, o.actionsJSON)
			if err != nil {
				return err
			}

			opts, err := o.processorOptions(cmd)
			if err != nil {
				return err
			}

			p, err := processor.New(opts, nil)
			if err != nil {
				return err
			}

			if err := p.Render(cmd.Context(), args[0], args[1], actions...); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), args[1])
			return nil
		},
	}

	addGraphicsFlags(cmd, &o)
	cmd.Flags().StringArrayVarP(&o.actions, "action", "a", nil, "action command such as thumb-200x200 (repeatable)")
	cmd.Flags().StringVar(&o.actionsJSON, "actions-json", "", "JSON array of actions appended after --action ones")

	return cmd
}
