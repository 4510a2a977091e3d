package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/instytutkryptografii/lektor/internal/config"
	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/scheduler"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	outputDir   string
	workers     int
	chunkSize   int64
	timeout     time.Duration
	userAgent   string
	proxyURL    string
	headersFile string
	cookiesFile string
	noAuth      bool
	noFix       bool
	debug       bool

	outputPath   string
	kindOverride string
	headerArgs   []string

	cfg config.Config
)

var LektorVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "lektor [URL]",
	Short:   "Lektor downloads lecture recordings and turns them into transcripts and summaries",
	Version: LektorVersion,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug)
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		applyFlagOverrides(cmd)
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
		if kindOverride != "" && kindOverride != "audio" && kindOverride != "video" {
			output.PrintError("Invalid --type, use 'audio' or 'video'")
			os.Exit(1)
		}
		entry := utils.DownloadEntry{URL: args[0], OutputPath: outputPath, Type: kindOverride}
		if outputPath != "" {
			if _, err := os.Stat(outputPath); err == nil {
				entry.OutputPath = utils.RenewOutputPath(outputPath)
			}
		}
		err := scheduler.Run(cmd.Context(), []utils.DownloadEntry{entry}, batchOptions(1))
		if err != nil {
			fmt.Println()
			output.PrintError("Encountered failed operation(s)")
			os.Exit(1)
		}
	},
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlagOverrides puts explicitly set flags above file and environment
// values for the keys both sides know about.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = chunkSize
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
}

func batchOptions(workerCount int) scheduler.BatchOptions {
	return scheduler.BatchOptions{
		OutputDir:   cfg.OutputDir,
		Workers:     workerCount,
		NoAuth:      noAuth,
		SkipFix:     noFix,
		HeadersFile: headersFile,
		CookiesFile: cookiesFile,
		Headers:     utils.ParseHeaderArgs(headerArgs),
		UserAgent:   userAgent,
		ProxyURL:    proxyURL,
		ChunkSize:   cfg.ChunkSize,
		Timeout:     cfg.Timeout,
	}
}

func init() {
	defaults := config.Default()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default lektor.yaml in . or ~/.config/lektor)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "d", defaults.OutputDir, "Directory for downloaded and generated files")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", defaults.Workers, "Number of files to download in parallel")
	rootCmd.PersistentFlags().Int64Var(&chunkSize, "chunk-size", defaults.ChunkSize, "Bytes per ranged request")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", defaults.Timeout, "HTTP request timeout (eg. 30s, 5m)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", "", "User agent ('randomize' picks one, empty uses the browser profile)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&headersFile, "headers-file", "", "JSON file with extra request headers")
	rootCmd.PersistentFlags().StringVar(&cookiesFile, "cookies-file", "", "JSON file with request cookies")
	rootCmd.PersistentFlags().BoolVar(&noAuth, "no-auth", false, "Send minimal headers instead of the browser profile")
	rootCmd.PersistentFlags().BoolVar(&noFix, "no-fix", false, "Skip the ffmpeg faststart pass on downloaded videos")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (inferred from the URL if not provided)")
	rootCmd.Flags().StringVar(&kindOverride, "type", "", "Treat the download as 'audio' or 'video' instead of guessing")
	rootCmd.Flags().StringArrayVarP(&headerArgs, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newPipelineCmd())
}
