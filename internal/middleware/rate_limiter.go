package middleware

import (
	"net/http"
	"sync"
	"time"

	"agrotrace/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Allocation write limiter ──────────────────────────────────────────────────

// writeEntry tracks allocation writes per IP within a sliding window.
type writeEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

var (
	writeMap   = make(map[string]*writeEntry)
	writeMapMu sync.Mutex
)

// WriteRateLimiter limits allocation writes (consolidations, expeditions,
// deletes) to 60 per minute per IP. A runaway client retrying a lost
// reservation in a tight loop only hurts itself.
func WriteRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		writeMapMu.Lock()
		entry, exists := writeMap[ip]
		if !exists {
			entry = &writeEntry{}
			writeMap[ip] = entry
		}
		writeMapMu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			// Reset sliding window
			entry.count = 0
			entry.windowEnd = now.Add(time.Minute)
		}

		entry.count++
		if entry.count > 60 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many allocation requests, retry in a minute"))
			return
		}
		c.Next()
	}
}

// ── General API rate limiter ──────────────────────────────────────────────────

// rateEntry tracks request counts per IP for the general API limiter.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

var (
	apiRateMap   = make(map[string]*rateEntry)
	apiRateMapMu sync.Mutex
)

// RateLimiter returns a general-purpose sliding-window limiter applied to the
// whole API; limit and window come from the router.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		apiRateMapMu.Lock()
		entry, exists := apiRateMap[ip]
		if !exists {
			entry = &rateEntry{}
			apiRateMap[ip] = entry
		}
		apiRateMapMu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries from both rate limiter maps to prevent
// memory leaks from accumulating IPs that never return.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		// Purge write limiter map
		writeMapMu.Lock()
		purgedWrite := 0
		for ip, entry := range writeMap {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(writeMap, ip)
				purgedWrite++
			}
			entry.mu.Unlock()
		}
		writeMapMu.Unlock()

		// Purge API rate limiter map
		apiRateMapMu.Lock()
		purgedAPI := 0
		for ip, entry := range apiRateMap {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(apiRateMap, ip)
				purgedAPI++
			}
			entry.mu.Unlock()
		}
		apiRateMapMu.Unlock()

		if purgedWrite > 0 || purgedAPI > 0 {
			log.Debug().
				Int("write_entries_purged", purgedWrite).
				Int("api_entries_purged", purgedAPI).
				Int("write_entries_remaining", len(writeMap)).
				Int("api_entries_remaining", len(apiRateMap)).
				Msg("rate limiter maps purged")
		}
	}
}
