package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/dashboard"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// run executes one console command. Global flags precede the command name.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet("roombooking", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configPath := global.String("config", "", "YAML configuration file (overrides ROOMBOOKING_CONFIG)")
	storeDSN := global.String("store", "", `store location: a SQLite path or "memory"`)
	latency := global.Duration("latency", -1, "simulated round-trip delay per operation")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: roombooking [global flags] <command> [flags]")
		fmt.Fprintln(stderr, "commands: register, login, logout, whoami, rooms, bookings, overview")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return pflag.ErrHelp
	}

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if *storeDSN != "" {
		cfg.StoreDSN = *storeDSN
	}
	if *latency >= 0 {
		cfg.Latency = *latency
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, level)
	ctx = logging.ContextWithLogger(ctx, logger)

	env, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	console := &console{ctx: ctx, ui: env.controller, out: stdout}
	return console.dispatch(global.Args())
}

type environment struct {
	controller *dashboard.Controller
	closer     io.Closer
}

func (e *environment) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// open wires the store, tables and services described by cfg.
func open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*environment, error) {
	var (
		store  persistence.Store
		closer io.Closer
	)
	if cfg.InMemory() {
		store = memory.New()
	} else {
		sqliteStore, err := sqlite.Open(ctx, cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		store, closer = sqliteStore, sqliteStore
	}

	codec, err := persistence.ParseCodec(cfg.Codec, cfg.Compress)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	seed := persistence.DefaultSeed()
	if cfg.SeedFile != "" {
		if seed, err = persistence.LoadSeedFile(cfg.SeedFile); err != nil {
			closeQuietly(closer)
			return nil, err
		}
	}

	policy, ok := application.ParseDeletePolicy(cfg.DeletePolicy)
	if !ok {
		closeQuietly(closer)
		return nil, fmt.Errorf("unknown delete policy %q", cfg.DeletePolicy)
	}

	params := application.DefaultArgon2idParams
	tables := persistence.NewTables(store, codec, seed, application.PasswordHasher(params))
	idGenerator := uuid.NewString
	now := time.Now

	sessions := application.NewSessionServiceWithLogger(tables, tables, params, logger)
	rooms := application.NewRoomServiceWithLogger(tables, idGenerator, logger)
	bookings := application.NewBookingServiceWithLogger(tables, rooms, idGenerator, now, logger)
	bookings.SetDeletePolicy(policy)
	if cfg.CascadeRoomDeletes {
		rooms.CascadeDeletesTo(bookings)
	}
	for _, svc := range []interface{ SetLatency(time.Duration) }{sessions, rooms, bookings} {
		svc.SetLatency(cfg.Latency)
	}

	logger.Debug("store opened",
		"dsn", cfg.StoreDSN,
		"codec", codec.Name(),
		"delete_policy", policy,
		"cascade_room_deletes", cfg.CascadeRoomDeletes,
	)

	return &environment{
		controller: dashboard.New(sessions, rooms, bookings, now, logger),
		closer:     closer,
	}, nil
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
