package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcline-labs/askdoc/internal/adapters/driving/api"
	"github.com/arcline-labs/askdoc/internal/logger"
)

var (
	serveAddr  string
	serveToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API. POST /api/v1/run accepts a document URL and a
list of questions and returns one answer per question.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8090)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "require this bearer token on API calls")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if qaService == nil {
		return errors.New("qa service not configured")
	}

	addr := serveAddr
	if addr == "" && configStore != nil {
		addr = configStore.GetString("server.addr")
	}
	token := serveToken
	if token == "" && configStore != nil {
		token = configStore.GetString("server.token")
	}

	srv := api.NewServer(qaService, api.Config{Addr: addr, AuthToken: token})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
