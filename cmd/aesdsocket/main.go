// Command aesdsocket runs the line-oriented TCP history service: it
// listens on a configurable address, appends every newline-terminated
// line it receives to a bounded command history, and streams the full
// (or seeked) history back to the connection that sent it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/config"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/logging"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/server"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/timestamp"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/xcmd"
)

var cmdArgs struct {
	ConfigPath string
	Daemon     bool
}

var rootCmd = &cobra.Command{
	Use:   "aesdsocket",
	Short: "Line-oriented TCP command history service",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if err := run(cmdArgs.ConfigPath, cmdArgs.Daemon); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cmdArgs.ConfigPath, "config", "c", "", "Path to the YAML configuration file (optional)")
	rootCmd.Flags().BoolVarP(&cmdArgs.Daemon, "daemon", "d", false, "Detach from the controlling terminal after the listener is bound")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, daemon bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	store, err := newStore(ctx, cfg.History, log)
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}

	srv := server.New(server.Config{
		ListenAddr:  cfg.Server.ListenAddr,
		MaxRxBuffer: int(cfg.Server.MaxRxBuffer),
	}, store, log)

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return srv.Run(ctx)
	})

	if cfg.History.Backend == config.BackendFile {
		writer := timestamp.New(store, srv.Mutex(), log)
		wg.Go(func() error {
			return writer.Run(ctx)
		})
	}

	if daemon {
		srv.Addr() // block until bound, matching "daemonize after bind/listen succeed"
		if err := daemonize(); err != nil {
			return fmt.Errorf("daemonize: %w", err)
		}
	}

	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infow("Caught signal, exiting", "error", err)
		return err
	})

	err = wg.Wait()
	var interrupted xcmd.Interrupted
	if errors.As(err, &interrupted) {
		return nil
	}
	return err
}

func newStore(ctx context.Context, cfg config.HistoryConfig, log *zap.SugaredLogger) (history.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return history.NewFileRing(ctx, cfg.FilePath, cfg.Capacity, log)
	case config.BackendMemory:
		return history.NewRing(cfg.Capacity), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
