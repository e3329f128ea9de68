package confirmation_fx

import (
	"context"
	"os"
	"time"

	"kiranaledger/internal/services"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewConfirmationService),
	fx.Invoke(registerExpirySweep),
)

// registerExpirySweep runs the confirmation deadline sweep in the background
// for the lifetime of the app. Expired confirmations flip to expired; the
// linked transactions stay pending.
func registerExpirySweep(lc fx.Lifecycle, confirmations services.ConfirmationServiceInterface, log zerolog.Logger) {
	interval := 5 * time.Minute
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						swept, err := confirmations.SweepExpired(ctx)
						if err != nil {
							log.Error().Err(err).Msg("confirmation expiry sweep failed")
							continue
						}
						if swept > 0 {
							log.Info().Int("expired", swept).Msg("confirmation expiry sweep done")
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
