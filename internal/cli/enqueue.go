package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/config"
	"github.com/aliskhannn/image-converter/internal/infra/kafka/producer"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/storage/file"
)

func newEnqueueCmd() *cobra.Command {
	var (
		configPath  string
		upload      string
		actions     []string
		actionsJSON string
	)

	cmd := &cobra.Command{
		Use:   "enqueue <input-object> <output-object>",
		Short: "Submit a render request to the queue",
		Long: `Publishes a render request for the converter service. With --upload the
local file is stored under <input-object> first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			list, err := parseActions(actions, actionsJSON)
			if err != nil {
				return err
			}

			req := model.Request{
				ID:        uuid.New(),
				Input:     args[0],
				Output:    args[1],
				Actions:   list,
				CreatedAt: time.Now().UTC(),
			}
			if err := req.Validate(); err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if upload != "" {
				st, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
				if err != nil {
					return err
				}
				if err := st.Upload(ctx, upload, req.Input); err != nil {
					return err
				}
				zlog.Logger.Info().Str("file", upload).Str("object", req.Input).Msg("source uploaded")
			}

			p := producer.New(&cfg.Kafka, retry.Strategy{
				Attempts: cfg.Retry.Attempts,
				Delay:    cfg.Retry.Delay,
				Backoff:  cfg.Retry.Backoff,
			})
			defer p.Client.Close()

			if err := p.Produce(ctx, req); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), req.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "./config/config.yml", "yaml config with kafka and storage settings")
	cmd.Flags().StringVar(&upload, "upload", "", "local file to upload as <input-object> before enqueueing")
	cmd.Flags().StringArrayVarP(&actions, "action", "a", nil, "action command such as thumb-200x200 (repeatable)")
	cmd.Flags().StringVar(&actionsJSON, "actions-json", "", "JSON array of actions appended after --action ones")

	return cmd
}
