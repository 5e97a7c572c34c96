package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Monica18narayan/GraphQL/internal/accesslog"
	"github.com/Monica18narayan/GraphQL/internal/catalog"
	"github.com/Monica18narayan/GraphQL/internal/catalogrt"
	"github.com/Monica18narayan/GraphQL/internal/config"
	"github.com/Monica18narayan/GraphQL/internal/eventbus"
	"github.com/Monica18narayan/GraphQL/internal/otel"
	"github.com/Monica18narayan/GraphQL/internal/schema"
	"github.com/Monica18narayan/GraphQL/internal/server"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env must be in the environment before flags read their sources.
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run moviegraph")
	}
}

func newApp(stdout io.Writer) *cli.Command {
	def := config.Default()
	return &cli.Command{
		Name:    "moviegraph",
		Usage:   "GraphQL API for a catalog of movies and their directors",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars(config.Env("log-level")),
				Value:   def.LogLevel,
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log output format (console, json)",
				Sources: cli.EnvVars(config.Env("log-format")),
				Value:   def.LogFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}
			switch c.String("log-format") {
			case config.LogFormatJSON:
				log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
			case config.LogFormatConsole:
			default:
				return ctx, fmt.Errorf("unknown log format %q", c.String("log-format"))
			}
			log.Logger = log.Level(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the GraphQL HTTP server",
				Flags: serveFlags(def),
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := configFromCommand(c)
					if err := cfg.Validate(); err != nil {
						return fmt.Errorf("invalid configuration: %w", err)
					}
					return serve(ctx, cfg)
				},
			},
			{
				Name:  "schema",
				Usage: "Print the GraphQL schema",
				Action: func(ctx context.Context, c *cli.Command) error {
					sch, err := catalogrt.Schema()
					if err != nil {
						return err
					}
					_, err = fmt.Fprint(stdout, schema.Render(sch))
					return err
				},
			},
		},
	}
}

func serveFlags(def config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Usage: "HTTP listen address", Sources: cli.EnvVars(config.Env("addr")), Value: def.Addr},
		&cli.StringFlag{Name: "path", Usage: "GraphQL endpoint path", Sources: cli.EnvVars(config.Env("path")), Value: def.Path},
		&cli.StringFlag{Name: "seed", Usage: "YAML or JSON seed file (default: built-in catalog)", Sources: cli.EnvVars(config.Env("seed"))},
		&cli.BoolFlag{Name: "introspection", Usage: "allow __schema and __type queries", Sources: cli.EnvVars(config.Env("introspection")), Value: def.Introspection},
		&cli.BoolFlag{Name: "graphiql", Usage: "serve GraphiQL to browsers", Sources: cli.EnvVars(config.Env("graphiql")), Value: def.GraphiQL},
		&cli.BoolFlag{Name: "pretty", Usage: "indent JSON responses", Sources: cli.EnvVars(config.Env("pretty"))},
		&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout", Sources: cli.EnvVars(config.Env("timeout")), Value: def.Timeout},
		&cli.IntFlag{Name: "max-body-bytes", Usage: "request body limit, 0 for none", Sources: cli.EnvVars(config.Env("max-body-bytes")), Value: def.MaxBodyBytes},
		&cli.StringSliceFlag{Name: "cors-origin", Usage: "allowed CORS origin, repeatable", Sources: cli.EnvVars(config.Env("cors-origin"))},
		&cli.IntFlag{Name: "cache-size", Usage: "parsed document cache entries, 0 disables", Sources: cli.EnvVars(config.Env("cache-size")), Value: int64(def.CacheSize)},
		&cli.StringFlag{Name: "otel-endpoint", Usage: "OTLP gRPC collector endpoint", Sources: cli.EnvVars(config.Env("otel-endpoint"))},
		&cli.StringFlag{Name: "otel-service", Usage: "OpenTelemetry service name", Sources: cli.EnvVars(config.Env("otel-service")), Value: def.OTelService},
	}
}

func configFromCommand(c *cli.Command) config.Config {
	return config.Config{
		Addr:          c.String("addr"),
		Path:          c.String("path"),
		Seed:          c.String("seed"),
		Introspection: c.Bool("introspection"),
		GraphiQL:      c.Bool("graphiql"),
		Pretty:        c.Bool("pretty"),
		Timeout:       c.Duration("timeout"),
		MaxBodyBytes:  int64(c.Int("max-body-bytes")),
		CORSOrigins:   c.StringSlice("cors-origin"),
		CacheSize:     int(c.Int("cache-size")),
		OTelEndpoint:  c.String("otel-endpoint"),
		OTelService:   c.String("otel-service"),
		LogLevel:      c.String("log-level"),
		LogFormat:     c.String("log-format"),
	}
}

// newHandler builds the GraphQL endpoint for cfg over a fresh store.
func newHandler(cfg config.Config) (http.Handler, *catalog.Store, error) {
	seed := catalog.DefaultSeed()
	if cfg.Seed != "" {
		var err error
		if seed, err = catalog.LoadSeed(cfg.Seed); err != nil {
			return nil, nil, err
		}
	}
	store := catalog.NewStore(seed)

	sch, err := catalogrt.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}

	sopts := []server.Option{
		server.WithTimeout(cfg.Timeout),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithGraphiQL(cfg.GraphiQL),
		server.WithIntrospection(cfg.Introspection),
		server.WithCacheSize(cfg.CacheSize),
	}
	if cfg.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.CORSOrigins...))
	}
	h, err := server.New(catalogrt.New(store), sch, sopts...)
	if err != nil {
		return nil, nil, fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, h)
	return mux, store, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	eventbus.Use(eventbus.New())
	defer accesslog.Register(log.Logger)()

	shutdown, err := otel.Setup(cfg.OTelEndpoint, cfg.OTelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	handler, store, err := newHandler(cfg)
	if err != nil {
		return err
	}
	snap := store.Snapshot()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	log.Info().
		Str("addr", cfg.Addr).
		Str("path", cfg.Path).
		Int("directors", len(snap.Directors)).
		Int("movies", len(snap.Movies)).
		Msg("GraphQL server listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
