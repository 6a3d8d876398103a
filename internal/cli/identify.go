package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/probe"
	"github.com/aliskhannn/image-converter/internal/runner"
)

func newIdentifyCmd() *cobra.Command {
	var (
		executable string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "identify <file>...",
		Short: "Print the pixel size of images as WxH",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := probe.New(command.New(executable), runner.New(timeout))

			for _, path := range args {
				size, err := p.Size(cmd.Context(), path, model.Format(path))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", path, size)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&executable, "executable", "convert", "convert binary whose identify sibling is used as fallback")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "budget for the identify fallback")

	return cmd
}
