package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwheeler/gridsim/infra/logger"
)

// scrapeMux exposes the simulation metrics for Prometheus scraping. A
// dedicated ServeMux keeps the scrape endpoint off the default mux.
func scrapeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StartPromServer serves simulation metrics on the given address until the
// context is canceled. Long optimizer runs scrape this between candidate
// evaluations, so shutdown is graceful rather than immediate.
func StartPromServer(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	log := logger.New("metrics")
	log.Infof("serving metrics on http://%s/metrics", ln.Addr())

	srv := &http.Server{Handler: scrapeMux()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("metrics server shutdown: %v", err)
		}
	}()
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
