// cmd/web/main.go
//
// Krishna Cabs enquiry service – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load config (defaults → conf/global.yaml → CABS_* env).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Register form overrides and open the optional GeoLite2 database.
//
//  5. Build the chi router: middleware chain, /metrics, and every
//     registered component (enquiry endpoints, health probe).
//
//  6. Serve until SIGINT/SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/krishnacabs/internal/component"
	"github.com/yanizio/krishnacabs/internal/config"
	"github.com/yanizio/krishnacabs/internal/form"
	"github.com/yanizio/krishnacabs/internal/logger"
	"github.com/yanizio/krishnacabs/internal/message"
	"github.com/yanizio/krishnacabs/internal/requestinfo"
	"github.com/yanizio/krishnacabs/internal/server"

	_ "github.com/yanizio/krishnacabs/components/enquiry"
	_ "github.com/yanizio/krishnacabs/components/system"
)

const (
	serverEnvPath   = "/usr/local/etc/krishnacabs/global.env"
	shutdownTimeout = 10 * time.Second
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	if err := run(); err != nil {
		log.Fatalf("krishnacabs: %v", err)
	}
}

func run() error {
	//
	// ── 1.  Config + logger ─────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logOut, err := logger.New(logger.Options{
		Dir:        cfg.LogDir(),
		Console:    cfg.Logging.Console || runningInTTY(),
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 2.  Forms + enrichment ──────────────────────────────────────────
	//
	if cfg.Forms.OverrideDir != "" {
		if err := form.RegisterForms([]string{cfg.Forms.OverrideDir}); err != nil {
			return err
		}
	}
	logOut.Infow("forms registered", "forms", form.IDs())

	profile, err := form.ParseProfile(cfg.Forms.ServerProfile)
	if err != nil {
		return err
	}
	if profile == form.Lenient {
		logOut.Warnw("lenient server validation enabled; pattern, option, and date rules are client-only")
	}

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Warnw("geo lookup disabled", "err", err)
	}
	defer func() { _ = requestinfo.CloseGeo() }()

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	handler, err := server.NewRouter(server.Options{
		Log:        logOut,
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Deps: component.Deps{
			Log:          logOut,
			Validator:    form.NewValidator(profile),
			Notifier:     message.LogNotifier{},
			SupportTo:    []string{cfg.Support.Recipient()},
			MaxBodyBytes: cfg.Forms.MaxBodyBytes,
			Now:          time.Now,
		},
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", srv.Addr, "profile", profile.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logOut.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
