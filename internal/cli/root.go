// Package cli implements graphicsctl, the command-line front end for local
// renders, size probes and queue submissions.
package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

// NewRootCommand builds the graphicsctl command tree. Command output goes to
// out; logs go through zlog.
func NewRootCommand(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "graphicsctl",
		Short:        "Render, probe and enqueue image conversions",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}

	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newIdentifyCmd())
	root.AddCommand(newEnqueueCmd())

	return root
}

// Execute runs graphicsctl with ctx.
func Execute(ctx context.Context, out io.Writer) error {
	zlog.Init()
	return NewRootCommand(out).ExecuteContext(ctx)
}
