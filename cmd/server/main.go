package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/config"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
	persistlog "github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/persistence/log"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/persistence/store"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/expedition"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/tracker"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/transport/ws"
)

// logGrants feeds reward payouts to the server log. The real item spawn
// path belongs to the host game; this server only decides what to grant.
type logGrants struct{ log *log.Logger }

func (g logGrants) Grant(playerID, itemID string, count int) {
	g.log.Printf("grant %s x%d to %s", itemID, count, playerID)
}

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "./configs/server.yaml", "server config path")
		seed       = flag.Int64("seed", 0, "reward rng seed (0 = time-based)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	reg := content.NewRegistry()
	report := reg.LoadSeed()

	schema, err := content.CompileSchema(cfg.SchemaPath)
	if err != nil {
		logger.Printf("expedition schema %s: %v (external content loads without schema checks)", cfg.SchemaPath, err)
		schema = nil
	}
	records := content.ReadContentDir(cfg.ContentDir, logger.Printf)
	ext := reg.LoadRaw(records, schema)
	report.Loaded += ext.Loaded
	report.Failed = append(report.Failed, ext.Failed...)

	logger.Printf("%d expeditions registered, %d entries failed", report.Loaded, len(report.Failed))
	if err := persistlog.WriteLoadReport(cfg.DataDir, report.String()); err != nil {
		logger.Printf("write load report: %v", err)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	svc := expedition.NewService(reg, true, logGrants{log: logger}, expedition.AlwaysSatisfied{}, rng, logger)

	tr := tracker.New(tracker.Config{TickRateHz: cfg.TickRateHz}, reg, svc, logger)

	if !cfg.DisableDB {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			logger.Fatalf("open progress store: %v", err)
		}
		defer db.Close()
		tr.SetStore(db)
	}

	audit := persistlog.NewAuditLogger(cfg.DataDir)
	defer audit.Close()
	tr.SetAuditLogger(audit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		if err := tr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("tracker stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", ws.NewServer(tr, logger).Handler())

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}

	// The deferred store and audit closes must not run while the tracker
	// can still write; stop it and wait before unwinding.
	cancel()
	<-trackerDone
}
