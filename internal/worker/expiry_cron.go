package worker

// expiry_cron.go
// Background goroutine that periodically scans for producer certificates
// approaching expiry and enqueues alert jobs. A Redis SETNX key per
// (producer, expiry) keeps ticks from re-alerting the same certificate.

import (
	"context"
	"fmt"
	"time"

	"agrotrace/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	expiryTickInterval = 6 * time.Hour
	expiryDedupeTTL    = 7 * 24 * time.Hour
)

// ExpiryCronConfig holds all dependencies for the expiry scan goroutine.
type ExpiryCronConfig struct {
	Producers  repository.ProducerRepository
	Dispatcher *Dispatcher
	RDB        *redis.Client
	AlertEmail string
	Window     time.Duration // how far ahead to warn
}

// StartExpiryCron launches a background goroutine that scans on an interval
// and respects the context for graceful shutdown. The first scan runs
// immediately so a restart never delays alerts by a full tick.
func StartExpiryCron(ctx context.Context, cfg ExpiryCronConfig) {
	go func() {
		ticker := time.NewTicker(expiryTickInterval)
		defer ticker.Stop()

		log.Info().Dur("window", cfg.Window).Msg("expiry_cron: started")
		scanExpiring(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiry_cron: shutting down")
				return
			case <-ticker.C:
				scanExpiring(ctx, cfg)
			}
		}
	}()
}

func scanExpiring(ctx context.Context, cfg ExpiryCronConfig) {
	producers, err := cfg.Producers.FindExpiringWithin(ctx, cfg.Window)
	if err != nil {
		log.Error().Err(err).Msg("expiry_cron: scan failed")
		return
	}
	if len(producers) == 0 {
		return
	}

	for i := range producers {
		p := &producers[i]
		expiry := p.CertificateExpiry.Format("2006-01-02")

		dedupeKey := fmt.Sprintf("alert:expiry:%s:%s", p.ID, expiry)
		set, err := cfg.RDB.SetNX(ctx, dedupeKey, 1, expiryDedupeTTL).Result()
		if err != nil {
			log.Error().Err(err).Msg("expiry_cron: dedupe check failed")
			continue
		}
		if !set {
			continue // already alerted for this certificate
		}

		payload := AlertJobPayload{
			ProducerID:        p.ID.String(),
			ProducerName:      p.Name,
			CertificateExpiry: expiry,
			ToEmail:           cfg.AlertEmail,
		}
		if err := cfg.Dispatcher.EnqueueAlert(ctx, payload); err != nil {
			log.Error().Err(err).Str("producer", p.Name).Msg("expiry_cron: enqueue failed")
			// Drop the dedupe key so the next tick retries
			_ = cfg.RDB.Del(ctx, dedupeKey).Err()
			continue
		}
		log.Info().Str("producer", p.Name).Str("expiry", expiry).Msg("expiry_cron: alert enqueued")
	}
}
