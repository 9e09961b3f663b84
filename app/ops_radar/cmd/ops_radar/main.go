package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/logger"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/publish"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "ops_radar",
		Short:        "Synthetic retail and logistics metrics with rule-based insights",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "config path")

	cmd.AddCommand(newRunCmd(opts), newRunsCmd(opts))
	return cmd
}

// loadConfig 配置文件不存在时使用默认配置
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("无法初始化日志: %w", err)
	}
	return cfg, nil
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		days       int
		seed       int64
		asJSON     bool
		publishRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate one dataset and print KPIs and insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Generator.Days
			}

			var engineOpts []engine.Option
			if publishRun {
				sinks, cleanup := openSinks(cmd.Context(), cfg)
				defer cleanup()
				for _, s := range sinks {
					engineOpts = append(engineOpts, engine.WithSink(s))
				}
			}

			eng, err := engine.NewEngine(cfg, engineOpts...)
			if err != nil {
				return err
			}
			snap, err := eng.Run(cmd.Context(), engine.RunOptions{Days: days, Seed: seed, Publish: publishRun})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of days before today to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().BoolVar(&publishRun, "publish", false, "send the snapshot to the configured archive and redis")
	return cmd
}

func newRunsCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled() {
				return errors.New("配置错误: 未设置数据库 (db.driver)")
			}
			store, err := storage.NewStorage(cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	return cmd
}

// openSinks 连接失败的消费者只记录日志后跳过
func openSinks(ctx context.Context, cfg *config.Config) ([]engine.Sink, func()) {
	var (
		sinks   []engine.Sink
		closers []func() error
	)
	if cfg.DB.Enabled() {
		store, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v，跳过归档", err)
		} else {
			sinks = append(sinks, store)
			closers = append(closers, store.Close)
		}
	}
	pub, err := publish.NewRedisPublisher(ctx, cfg.Redis)
	if err != nil {
		logger.Log.Errorf("无法连接 Redis: %v，跳过发布", err)
	} else if pub != nil {
		sinks = append(sinks, pub)
		closers = append(closers, pub.Close)
	}
	return sinks, func() {
		for _, c := range closers {
			_ = c()
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
