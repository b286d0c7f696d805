package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"NewsScope/internal/app"
	"NewsScope/internal/config"
	"NewsScope/internal/logging"
	"NewsScope/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
		cfg        config.Config
	)

	root := &cobra.Command{
		Use:           "newsscope",
		Short:         "Topic and search news analysis pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				if err := os.Setenv("NEWSSCOPE_CONFIG", configFile); err != nil {
					return err
				}
			}
			cfg = config.Load()
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides NEWSSCOPE_CONFIG)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	build := func() (*app.Application, error) {
		logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		return app.New(cfg, logger)
	}

	root.AddCommand(
		serveCmd(build),
		topicsCmd(build),
		topicCmd(build),
		searchCmd(build),
		summarizeCmd(build),
	)
	return root
}

type builder func() (*app.Application, error)

func serveCmd(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build()
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context())
		},
	}
}

func topicsCmd(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List predefined topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build()
			if err != nil {
				return err
			}
			for _, topic := range application.Pipeline().ListTopics() {
				fmt.Fprintln(cmd.OutOrStdout(), topic)
			}
			return nil
		},
	}
}

func topicCmd(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "topic [name]",
		Short: "Analyze the most recent articles for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := build()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), application)
			defer cancel()

			res, err := application.Pipeline().GetTopicArticles(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func searchCmd(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query...]",
		Short: "Analyze articles whose title contains the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := build()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), application)
			defer cancel()

			res, err := application.Pipeline().Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func summarizeCmd(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [text...]",
		Short: "Summarize texts given as arguments, or stdin when none",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				texts = []string{string(raw)}
			}

			application, err := build()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), application)
			defer cancel()

			for _, summary := range application.Pipeline().SummarizeTexts(ctx, texts) {
				fmt.Fprintln(cmd.OutOrStdout(), summary)
			}
			return nil
		},
	}
}

func withTimeout(ctx context.Context, application *app.Application) (context.Context, context.CancelFunc) {
	if d := application.RequestTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func printResult(w io.Writer, res usecase.Result) error {
	if res.Empty {
		_, err := fmt.Fprintln(w, "no matching articles")
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
