package main

import (
	"os"

	"ats-score-go/internal/config"
	"ats-score-go/internal/logger"

	"github.com/spf13/cobra"
)

const app = "atsscore"

// rootOptions 所有子命令共享的参数
type rootOptions struct {
	cfgFile string
	debug   bool
	offline bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          app,
		Short:        "atsscore scores a PDF resume against a job description",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "a config file (default: built-in configuration)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "use the local hashing embedder instead of the embedding model (lexical similarity only)")

	rootCmd.AddCommand(
		newScoreCmd(opts),
		newExtractCmd(opts),
		newSkillsCmd(),
		newInitConfigCmd(),
	)
	return rootCmd
}

// loadConfig 加载配置并初始化日志; CLI 日志输出到 stderr, 不干扰结果输出
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.offline {
		cfg.UseOfflineEmbedding()
	}
	logCfg := logger.Config(cfg.Logger)
	if o.debug {
		logCfg.Level = "debug"
	} else if logCfg.Level == "" || logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logger.InitWithWriter(logCfg, os.Stderr)
	logger.SetupHertz()
	return cfg, nil
}
