// Status API serves the cycles written by climate_control: the latest report,
// a websocket feed of new reports, prometheus metrics and intensity scores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/aggregator"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/config"
	"github.com/NotCoffee418/home_climate_control/pkg/hccutils"
	"github.com/NotCoffee418/home_climate_control/pkg/pathing"
	"github.com/NotCoffee418/home_climate_control/pkg/statusapi"
	log "github.com/sirupsen/logrus"
)

func main() {
	configDir := flag.String("config-dir", "", "config directory (default $HCC_CONFIG_DIR or /etc/home_climate_control)")
	flag.Parse()

	if err := config.LoadStatusAPIConfig(*configDir); err != nil {
		log.Fatalf("Failed to load status API config: %v", err)
	}
	cfg := config.ActiveStatusAPIConfig
	hccutils.ConfigureLogging(cfg.LogLevel)

	store, err := climatedb.Open(pathing.GetClimateDbPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	server := statusapi.NewServer(store, aggregator.New(store, cfg.Location()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go server.Run(ctx, cfg.PollInterval.Duration)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	httpServer := &http.Server{
		Addr:              listener,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.WithField("listen", listener).Info("starting home climate control status API")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Status API stopped: %v", err)
	}
}
