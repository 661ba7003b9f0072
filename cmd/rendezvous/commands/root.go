package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rendezvous/internal/app"
	"rendezvous/internal/config"
)

var configFile string

// RootCmd runs the presence and signaling relay.
var RootCmd = &cobra.Command{
	Use:   "rendezvous",
	Short: "Peer presence and WebRTC signaling relay",
	RunE:  runServer,
}

func init() {
	RootCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
}

// runServer starts the application and waits for SIGINT or SIGTERM.
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.LogLevel)

	application, err := app.NewApplication(cfg, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("signal received")
	}

	return application.Shutdown(context.Background())
}
