// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/core"
)

const usage = `usage: migrate [-config path] <command> [args]

commands:
  up            apply all pending migrations
  up-by-one     apply the next migration
  down          roll back the latest migration
  redo          roll back and re-apply the latest migration
  reset         roll back every migration
  status        print migration status
  version       print the current version
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, command string, args []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	slog.Info("running migrations", "command", command)

	return core.Migrate(ctx, db.DB.DB, command, args...)
}
