package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// DefaultConfPath 未指定 -c 时若存在则读取
const DefaultConfPath = "./conf/conf.toml"

var (
	configPath string
	logLevel   string
)

// newRootCmd 根命令下载并拼接, 子命令只运行其中一个阶段
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tilestitch",
		Short: "Download a full zoom level of map tiles and stitch them into one image",
		Long: `tilestitch fetches every tile of one zoom level (2^zoom x 2^zoom) from an
XYZ tile server, saves each as {x}-{y}.png under the output directory and
combines them into combined.png.

Configuration comes from flags, TILESTITCH_* environment variables, .env and
an optional TOML file, in that order of precedence.`,
		Version:       "v0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, func(ctx context.Context, c *Conf) error {
				_, err := Run(ctx, c, NewHTTPFetcher(c.TileMap(), c.Task.Timeout))
				return err
			})
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "set config `file` (toml, default "+DefaultConfPath+" if present)")
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "set log level")
	root.PersistentFlags().IntP("zoom", "z", DefaultZoom, "zoom level, grid is 2^zoom tiles per axis")
	root.PersistentFlags().StringP("output", "o", "", "output directory (default zoom-{zoom})")
	root.PersistentFlags().IntP("workers", "w", 1, "parallel downloads, 1 keeps strict order")

	root.AddCommand(&cobra.Command{
		Use:   "download",
		Short: "Only download the tiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, func(ctx context.Context, c *Conf) error {
				task, err := NewTask(c, NewHTTPFetcher(c.TileMap(), c.Task.Timeout))
				if err != nil {
					return err
				}
				return task.Download(ctx)
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "combine",
		Short: "Only combine already downloaded tiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, func(ctx context.Context, c *Conf) error {
				_, err := Combine(c)
				return err
			})
		},
	})
	return root
}

// resolveConfPath 显式指定的路径原样返回, 否则使用存在的默认配置
func resolveConfPath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfPath); err == nil {
		return DefaultConfPath
	}
	return ""
}

// runStage 加载配置与日志, 注册安全退出后执行 fn
func runStage(cmd *cobra.Command, fn func(ctx context.Context, c *Conf) error) error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	c, err := LoadConf(resolveConfPath(configPath), cmd.Flags())
	if err != nil {
		return err
	}
	if err := InitLog(c, logLevel); err != nil {
		return err
	}

	safeExit, ctx := NewSafeExit(cmd.Context())
	defer safeExit.Stop()

	log.Debugf("%s %s: %s zoom %d -> %s", c.App.Title, c.App.Version, c.Tm.Name, c.Tm.Zoom, c.Output.Directory)
	start := time.Now()
	if err := fn(ctx, c); err != nil {
		return fmt.Errorf("%s after %.3fs: %w", cmd.Name(), time.Since(start).Seconds(), err)
	}
	return nil
}
