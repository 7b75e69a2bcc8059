package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"leadreport/internal/config"
	"leadreport/internal/server"
	"leadreport/internal/service/runner"
	"leadreport/internal/store"
	"leadreport/internal/util"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "leadreport",
		Short:         "申込データから成約率レポートを生成する",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config.toml のパス (既定: 実行ファイルと同じディレクトリ)")

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newServeCmd(&configPath),
		newConfigCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 加载配置并准备数据目录（相对路径相对于配置文件所在目录）
func loadConfig(configPath string) (*config.AppConfig, config.LoadConfigInfo, string, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, info, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, info, "", err
	}
	if !info.FileFound {
		log.Printf("[config] %s が見つからないため既定値を使用します", info.Path)
	}

	dataDir, err := config.EnsureDataDirAt(cfg, filepath.Dir(info.Path))
	if err != nil {
		return nil, info, "", fmt.Errorf("create data dir: %w", err)
	}
	return cfg, info, dataDir, nil
}

func newRunCmd(configPath *string) *cobra.Command {
	var source, sheet, output string
	var open bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "分析を1回実行してレポートシートを書き出す",
		Long: `申込データを読み込み、6つのレポートシートを書き出します。

出力先を指定しない場合、xlsx の入力にはそのままシートを追加し、
csv の入力には data/exports/<名前>_analysis.xlsx を作成します。

Example: leadreport run --source leads.xlsx --sheet リスト`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, dataDir, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Source.Path = source
			}
			if sheet != "" {
				cfg.Source.Sheet = sheet
			}
			if output != "" {
				cfg.Output.Path = output
			}
			if cfg.Source.Path == "" {
				return errors.New("入力ファイルが指定されていません (--source または source.path)")
			}

			st, err := store.New(filepath.Join(dataDir, server.DBFileName))
			if err != nil {
				return err
			}
			defer st.Close()

			coordinator := runner.NewCoordinator(cfg.AnalysisSettings(), runner.Options{
				ExportDir: filepath.Join(dataDir, "exports"),
				Store:     st,
			})
			res, err := coordinator.Run(cmd.Context(), runner.Request{
				Trigger:     store.TriggerCLI,
				SourcePath:  cfg.Source.Path,
				SourceSheet: cfg.Source.Sheet,
				OutputPath:  cfg.Output.Path,
			}, func(ev runner.ProgressEvent) {
				fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
			})
			if err != nil {
				return err
			}

			for _, w := range res.Warnings {
				fmt.Printf("警告: %s\n", w)
			}
			fmt.Printf("完了: %d件 / %dシート → %s (%.1f秒)\n", res.RecordCount, len(res.Sheets), res.OutputPath, res.Elapsed.Seconds())

			if open {
				if err := util.OpenFile(res.OutputPath); err != nil {
					fmt.Printf("ファイルを自動で開けませんでした: %s\n", res.OutputPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "入力ファイル (.xlsx/.xlsm/.csv)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "入力シート名 (空ならヘッダーから自動判定)")
	cmd.Flags().StringVar(&output, "output", "", "出力ブック (.xlsx)")
	cmd.Flags().BoolVar(&open, "open", false, "完了後に出力ブックを開く")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	var port int
	var devMode bool
	var dataDirFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "HTTP API と定時実行を起動する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDirFlag != "" {
				if err := os.Setenv(config.EnvDataDir, dataDirFlag); err != nil {
					return err
				}
			}
			cfg, info, dataDir, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			// config.toml 显式配置的端口优先
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}

			fmt.Println("==========================================")
			fmt.Println("  leadreport - 申込・成約分析")
			fmt.Println("==========================================")
			fmt.Printf("データディレクトリ: %s\n", dataDir)

			srv, err := server.NewServer(cfg, dataDir)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			fmt.Printf("http://localhost:%d で待機中 (Ctrl+C で停止)\n", cfg.Server.Port)
			if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
			}
			fmt.Println("\n停止しました")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "待受ポート (config.toml に port がない場合のみ有効)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "開発モード")
	cmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "データディレクトリ (設定を上書き)")
	return cmd
}

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "設定ファイルの操作",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "既定値で config.toml を作成する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s は既に存在します (--force で上書き)", path)
			}
			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("作成しました: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "既存ファイルを上書きする")

	cmd.AddCommand(initCmd)
	return cmd
}
