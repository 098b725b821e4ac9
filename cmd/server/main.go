package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/internal/logging"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/openrouter"
	"github.com/yadnesh111/AgriSaarthi/pkg/server"
	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	envFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:              "agrisaarthi",
		Short:            "AgriSaarthi farmer assistance API",
		SilenceUsage:     true,
		PersistentPreRun: c.setup,
	}
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	serveCmd := c.newServeCmd()
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(c.newCheckCmd())

	// Running the bare binary serves.
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	return rootCmd
}

// setup loads the dotenv file, configuration and logger. A missing dotenv
// file only warns; hosted deployments set the environment directly.
func (c *cli) setup(cmd *cobra.Command, args []string) {
	envErr := godotenv.Load(c.envFile)

	c.cfg = config.LoadConfig()
	logging.Setup(c.cfg.LogLevel, c.cfg.Environment)
	if c.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if envErr != nil {
		log.Warn().Err(envErr).Str("file", c.envFile).Msg("dotenv file not loaded")
	}
}

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				c.cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, c.cfg)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("environment", cfg.Environment).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newCheckCmd verifies the completion provider and the mandi data source are
// reachable with the configured credentials.
func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the completion provider and mandi data source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			failed := false

			llm := openrouter.NewClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.LLMTimeout)
			reply, err := llm.Complete(ctx, []openrouter.ChatMessage{
				{Role: openrouter.RoleUser, Content: "Reply with the single word OK."},
			}, openrouter.CompletionOptions{Model: cfg.ChatModel, Temperature: 0, MaxTokens: 5})
			if err != nil {
				failed = true
				fmt.Fprintf(out, "completion provider: FAIL %v\n", err)
			} else {
				fmt.Fprintf(out, "completion provider: ok (%s replied %q)\n", cfg.ChatModel, reply)
			}

			mandi := services.NewMandiService(cfg.DataGovBaseURL, cfg.DataGovAPIKey, 1, cfg.HTTPTimeout)
			records, err := mandi.FetchPrices(ctx, models.PriceFilter{})
			if err != nil {
				failed = true
				fmt.Fprintf(out, "mandi data source: FAIL %v\n", err)
			} else {
				fmt.Fprintf(out, "mandi data source: ok (%d records)\n", len(records))
			}

			if failed {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
