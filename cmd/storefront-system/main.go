package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"storefront-system/internal/board"
	"storefront-system/internal/catalog"
	"storefront-system/internal/common/httpx"
	"storefront-system/internal/common/logger"
	"storefront-system/internal/config"
	"storefront-system/internal/connections/database"
	"storefront-system/internal/connections/rabbitmq"
	"storefront-system/internal/console"
	"storefront-system/internal/cooldown"
	"storefront-system/internal/metrics"
	"storefront-system/internal/store"
	"storefront-system/internal/storefront"
)

func main() {
	mode := flag.String("mode", "", "storefront-service | order-board | console")
	port := flag.Int("port", 0, "http port for service modes")
	cfgPath := flag.String("config", "", "path to YAML config")
	offline := flag.Bool("offline", false, "console: run against an in-memory store")
	flag.Parse()

	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch *mode {
	case "storefront-service":
		err = runStorefront(ctx, lg, *cfgPath, pickPort(*port, 3000))
	case "order-board":
		err = runBoard(ctx, lg, *cfgPath, pickPort(*port, 3002))
	case "console":
		err = runConsole(ctx, lg, *cfgPath, *offline)
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: storefront-service | order-board | console")
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
}

func pickPort(flagPort, def int) int {
	if flagPort != 0 {
		return flagPort
	}
	if env := os.Getenv("PORT"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			return n
		}
	}
	return def
}

func loadConfig(path string) (config.App, error) {
	if path == "" {
		found, err := config.FindConfig()
		if err != nil {
			return config.App{}, fmt.Errorf("no config file found, pass --config")
		}
		path = found
	}
	return config.Load(path)
}

// connect opens the shared store backed by postgres and the fanout exchange.
func connect(ctx context.Context, cfg config.App) (*store.Postgres, func(), error) {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	mq, err := rabbitmq.Dial(cfg.Rabbit)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("rabbitmq: %w", err)
	}
	if err := mq.DeclareTopology(); err != nil {
		mq.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("declare topology: %w", err)
	}

	st := store.NewPostgres(pool, mq)
	if err := st.EnsureSchema(ctx); err != nil {
		mq.Close()
		pool.Close()
		return nil, nil, err
	}
	cleanup := func() {
		mq.Close()
		pool.Close()
	}
	return st, cleanup, nil
}

func runStorefront(ctx context.Context, lg *logger.Logger, cfgPath string, port int) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	st, cleanup, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	gate, err := cooldown.Open(cfg.Cooldown.Dir)
	if err != nil {
		return err
	}
	defer gate.Close()

	svc := storefront.New(catalog.Default(), gate, st, metrics.NewStorefront(prometheus.DefaultRegisterer))

	mux := http.NewServeMux()
	storefront.NewHandler(svc).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	lg.Info("service_started", map[string]any{"service": "storefront-service", "port": port})
	drain := time.Duration(cfg.Server.DrainSeconds) * time.Second
	return httpx.New(":"+strconv.Itoa(port), mux, drain).Run(ctx)
}

func runBoard(ctx context.Context, lg *logger.Logger, cfgPath string, port int) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	st, cleanup, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	b := board.New(st, metrics.NewBoard(prometheus.DefaultRegisterer))
	go func() {
		if err := b.Run(ctx); err != nil && ctx.Err() == nil {
			lg.Error("board_feed_stopped", err, nil)
		}
	}()

	mux := http.NewServeMux()
	board.NewHandler(b).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	lg.Info("service_started", map[string]any{"service": "order-board", "port": port})
	drain := time.Duration(cfg.Server.DrainSeconds) * time.Second
	return httpx.New(":"+strconv.Itoa(port), mux, drain).Run(ctx)
}

func runConsole(ctx context.Context, lg *logger.Logger, cfgPath string, offline bool) error {
	var (
		st      store.Store
		cleanup = func() {}
		dir     = "data/cooldown"
	)
	if offline {
		st = store.NewMemory()
	} else {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		st, cleanup, err = connect(ctx, cfg)
		if err != nil {
			return err
		}
		dir = cfg.Cooldown.Dir
	}
	defer cleanup()

	gate, err := cooldown.Open(dir)
	if err != nil {
		return err
	}
	defer gate.Close()

	svc := storefront.New(catalog.Default(), gate, st, metrics.NewStorefront(prometheus.DefaultRegisterer))
	b := board.New(st, metrics.NewBoard(prometheus.DefaultRegisterer))
	go func() {
		if err := b.Run(ctx); err != nil && ctx.Err() == nil {
			lg.Error("board_feed_stopped", err, nil)
		}
	}()

	program := tea.NewProgram(console.NewModel(svc, b))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, err = program.Run()
	return err
}
