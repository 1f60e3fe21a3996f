// README: Entry point; loads config, wires the episode registry and
// metrics store, starts the HTTP control API. Grounded on
// cmd/ark-api/main.go's load-config/wire-services/serve shape, generalized
// from the ride-hailing service graph to the simulator's episode registry
// + metrics store.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"deliverysim/internal/config"
	"deliverysim/internal/httpapi"
	"deliverysim/internal/httpapi/episodes"
	"deliverysim/internal/httpapi/middleware"
	"deliverysim/internal/infra"
	"deliverysim/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsStore *metrics.Store
	if dbPool, err := infra.NewDB(ctx, cfg.DB.DSN); err != nil {
		log.Printf("metrics store disabled: db connect failed: %v", err)
	} else {
		metricsStore = metrics.NewStore(dbPool)
		if err := metricsStore.Migrate(ctx); err != nil {
			log.Printf("metrics store disabled: migrate failed: %v", err)
			metricsStore = nil
		}
	}

	verifier := middleware.NewVerifier(cfg.Auth.JWTSecret)
	router := httpapi.NewRouter(episodes.NewRegistry(), metricsStore, verifier)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	log.Printf("simserver listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
