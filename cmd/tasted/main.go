package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pulseplan/taste-engine/internal/feedback"
	"github.com/pulseplan/taste-engine/internal/gate"
	"github.com/pulseplan/taste-engine/internal/platform"
	"github.com/pulseplan/taste-engine/internal/scheduler"
	"github.com/pulseplan/taste-engine/internal/store"
)

// #region main
func main() {
	dbPath := envOr("TASTE_DB", "taste_engine.db")
	platformAddr := envOr("TASTE_PLATFORM_ADDR", "http://localhost:8600")

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	remote := platform.NewRemoteClient(platformAddr)
	publisher := platform.NewRateLimitedPublisher(remote, rate.Limit(publishRate()), 1)

	gateCfg := gate.ConfigFromEnv()
	g := gate.New(gateCfg, st, st, remote, st)

	schedCfg := scheduler.ConfigFromEnv()
	sched := scheduler.New(schedCfg, st, st, g, publisher, remote, st.DB())

	validator := feedback.NewValidator(st, st, remote)

	fmt.Println("Taste engine daemon ready.")
	fmt.Printf("  DB: %s | Platform: %s | Poll: %s | Gate enforced: %v\n",
		dbPath, platformAddr, schedCfg.PollInterval, gateCfg.Enforced)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		sched.Start(egCtx)
		return nil
	})

	eg.Go(func() error {
		runValidationSweep(egCtx, st, validator)
		return nil
	})

	<-egCtx.Done()
	sched.Stop()
	if err := eg.Wait(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("[DAEMON] stopped")
}

// #endregion main

// #region validation-sweep

// validationBatch bounds how many published items one sweep validates.
const validationBatch = 25

// runValidationSweep periodically validates published items that have no
// outcome record yet, feeding results back into the genome.
func runValidationSweep(ctx context.Context, st *store.Store, v *feedback.Validator) {
	interval := sweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := st.PendingValidation(ctx, validationBatch)
			if err != nil {
				log.Printf("[VALIDATE] pending query failed: %v", err)
				continue
			}
			if len(ids) == 0 {
				continue
			}
			records := v.ValidateBatch(ctx, ids)
			log.Printf("[VALIDATE] sweep validated %d of %d items", len(records), len(ids))
		}
	}
}

// #endregion validation-sweep

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// publishRate is publishes per second allowed against the platform API.
func publishRate() float64 {
	if v := os.Getenv("TASTE_PUBLISH_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return 0.5
}

func sweepInterval() time.Duration {
	if v := os.Getenv("TASTE_VALIDATE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 10 * time.Minute
}

// #endregion helpers
