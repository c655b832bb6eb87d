package event

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

// RecordHit reports a public read to the stats service in the background.
// Failures are logged and never reach the caller.
func (s *Service) RecordHit(uri, ip string) {
	hit := Hit{
		App:       s.appName,
		URI:       uri,
		IP:        ip,
		Timestamp: s.clock.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.statsTimeout)
		defer cancel()
		if err := s.stats.Hit(ctx, hit); err != nil {
			zlog.Warn().
				Err(err).
				Str("uri", hit.URI).
				Msg("stats_hit_failed")
		}
	}()
}
