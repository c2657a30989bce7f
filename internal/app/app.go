// Package app wires configuration, storage and the coaching service
// into one application context for the CLI commands.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/speakbetter/speech-coach/configs"
	"github.com/speakbetter/speech-coach/internal/catalog"
	"github.com/speakbetter/speech-coach/internal/coach"
	"github.com/speakbetter/speech-coach/internal/output"
	"github.com/speakbetter/speech-coach/internal/portable"
	"github.com/speakbetter/speech-coach/internal/store"
	"github.com/speakbetter/speech-coach/pkg/audio/decode"
	"github.com/speakbetter/speech-coach/pkg/logging"
)

// Context holds the CLI arguments shared by all commands.
type Context struct {
	ConfigFile   string
	OutputFile   string
	OutputFormat string
	Verbose      bool

	Logger logging.Logger
	Config *configs.Config
}

// App bundles the wired application: config, store, service.
type App struct {
	ctx     *Context
	config  *configs.Config
	service *coach.Service
	store   coach.Store
	pool    *pgxpool.Pool
	logger  logging.Logger
}

// NewApp loads configuration, connects the store (postgres when a
// database URL is configured, in-memory otherwise), seeds the task and
// topic catalog and wires the coaching service.
func NewApp(ctx *Context) (*App, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := config.LogLevel
	if ctx.Verbose {
		level = "debug"
	}
	logging.Configure(level)
	logger := logging.WithFields(logging.Fields{"component": "app"})
	ctx.Logger = logger
	ctx.Config = config

	app := &App{
		ctx:    ctx,
		config: config,
		logger: logger,
	}

	if config.Database.URL != "" {
		pool, err := pgxpool.New(context.Background(), config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		app.pool = pool
		app.store = pg
	} else {
		app.store = store.NewMemoryStore()
		logger.Debug("no database configured, using in-memory store")
	}

	if err := catalog.EnsureSeeded(context.Background(), app.store); err != nil {
		app.Close()
		return nil, err
	}

	decoder := decode.NewDecoder(decode.Config{
		TargetSampleRate: config.Audio.SampleRate,
		FFmpegPath:       config.Audio.FFmpegPath,
		ScratchDir:       config.Audio.ScratchDir,
		KeepScratch:      config.Audio.KeepScratch,
	})

	app.service = coach.NewService(app.store, decoder, coach.ServiceConfig{
		UploadDir: config.Upload.Dir,
	})

	logger.Debug("application initialized", logging.Fields{
		"database":   config.Database.URL != "",
		"upload_dir": config.Upload.Dir,
	})
	return app, nil
}

// Service exposes the wired coaching service.
func (a *App) Service() *coach.Service {
	return a.service
}

// Config exposes the loaded configuration.
func (a *App) Config() *configs.Config {
	return a.config
}

// Close releases the database pool if one was opened.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// WriteResult normalizes data, formats it per the configured output
// format and writes it to the output file or stdout.
func (a *App) WriteResult(data any) error {
	format := a.ctx.OutputFormat
	if format == "" {
		format = a.config.OutputFormat
	}
	formatter := output.ForName(format)

	formatted, err := formatter.Format(portable.Scalars(data), true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}
	if len(formatted) > 0 && formatted[len(formatted)-1] != '\n' {
		formatted = append(formatted, '\n')
	}

	if a.ctx.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(a.ctx.OutputFile), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(a.ctx.OutputFile, formatted, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		a.logger.Debug("results written to file", logging.Fields{
			"output_file": a.ctx.OutputFile,
			"size_bytes":  len(formatted),
		})
		return nil
	}

	_, err = os.Stdout.Write(formatted)
	return err
}
