package launcher

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evalphobia/logrus_sentry"
	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/veilgov/api"
	"github.com/rony4d/veilgov/flags"
	"github.com/rony4d/veilgov/gov/genesis"
	"github.com/rony4d/veilgov/integration"
	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/metrics"
)

var app = flags.NewApp()

func init() {
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.GovernanceFlags()...)
	app.Flags = append(app.Flags, flags.OracleFlags()...)
	app.Action = run
}

// Launch parses flags and starts the governance node.
func Launch(args []string) error {
	return app.Run(args)
}

func run(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	if !cfg.Gov.FakeNet {
		// Real networks need an external sealing vault and oracle endpoint;
		// that transport is not wired yet.
		return fmt.Errorf("network %q is not operable yet, start with --fakenet N", cfg.Gov.NetworkName)
	}

	var rt *integration.Runtime
	rt, err = integration.MakeCustomFakeRuntime(cfg.Gov.FakeNetSubmitters, func(g *genesis.Genesis) {
		g.Rules.Upgrades.StrictHandles = cfg.Gov.StrictHandles
	})
	if err != nil {
		return err
	}
	defer rt.Stop()

	if cfg.Gov.CooldownSeconds >= 0 {
		admin := rt.Genesis.Admin
		if err := rt.Engine.SetCooldown(admin, uint64(cfg.Gov.CooldownSeconds)); err != nil {
			return fmt.Errorf("apply cooldown override: %w", err)
		}
	}

	if cfg.Oracle.AutoDeliver {
		startAutoDeliver(rt, cfg.Oracle.Delay)
	}

	log.WithFields(log.Fields{
		"network":    cfg.Gov.NetworkName,
		"instance":   rt.Engine.InstanceID().Hex(),
		"submitters": cfg.Gov.FakeNetSubmitters,
		"datadir":    cfg.Node.DataDir,
	}).Info("veilgov node started")

	var servers []*http.Server
	if cfg.API.Enabled {
		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.API.Addr, cfg.API.Port),
			Handler: api.NewServer(rt.Engine).Router(),
		}
		servers = append(servers, srv)
		go serve("api", srv)
	}
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Metrics.Addr, cfg.Metrics.Port),
			Handler: mux,
		}
		servers = append(servers, srv)
		go serve("metrics", srv)
	}

	waitForShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown")
		}
	}
	log.Info("veilgov node stopped")
	return nil
}

// startAutoDeliver answers decryption requests with the in-process oracle,
// so a fakenet behaves like a deployment with a live oracle attached.
func startAutoDeliver(rt *integration.Runtime, delay time.Duration) {
	rt.Emitter.Subscribe("oracle-autodeliver", func(rec *inter.Record) {
		if rec.Type != inter.RecordDecryptionRequested {
			return
		}
		id := rec.Request
		go func() {
			if delay > 0 {
				time.Sleep(delay)
			}
			clearValues, proof, err := rt.Oracle.Deliver(id)
			if err != nil {
				log.WithError(err).WithField("request", id).Error("oracle delivery failed")
				return
			}
			outcome, err := rt.Engine.DeliverDecryption(id, clearValues, proof)
			if err != nil {
				log.WithError(err).WithField("request", id).Error("decryption callback rejected")
				return
			}
			log.WithFields(log.Fields{
				"request":  id,
				"batch":    outcome.Batch,
				"approved": outcome.Approved,
			}).Info("decryption delivered")
		}()
	})
}

func serve(name string, srv *http.Server) {
	log.WithField("addr", srv.Addr).Infof("%s server listening", name)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Errorf("%s server failed", name)
	}
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.WithField("signal", s.String()).Info("shutting down")
}

func setupLogging(cfg LoggingConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{ForceColors: cfg.Color})
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > int(log.TraceLevel) {
		cfg.Verbosity = int(log.InfoLevel)
	}
	log.SetLevel(log.Level(cfg.Verbosity))

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []log.Level{
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
		})
		if err != nil {
			log.WithError(err).Warn("sentry hook disabled")
			return
		}
		hook.Timeout = 3 * time.Second
		log.AddHook(hook)
	}
}
