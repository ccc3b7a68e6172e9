package service

import (
	"context"
	"errors"

	"ville-ideale-api/internal/models"
	"ville-ideale-api/internal/scraper"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// TownFetcher interface for dependency injection
type TownFetcher interface {
	FetchTown(ctx context.Context, name, code string) (*models.TownRecord, error)
}

// TownCache interface for dependency injection
type TownCache interface {
	Get(key string) (*models.TownRecord, bool)
	Add(key string, town *models.TownRecord)
}

// TownService answers town lookups from the cache, falling back to the
// scraper on a miss. Concurrent misses for the same key share one fetch.
type TownService struct {
	fetcher TownFetcher
	cache   TownCache
	flights singleflight.Group
}

// NewTownService creates a new town service
func NewTownService(fetcher TownFetcher, cache TownCache) *TownService {
	return &TownService{fetcher: fetcher, cache: cache}
}

// CacheKey is built from the raw, unnormalized name, so "Antony" and "antony"
// are cached separately even though they resolve to the same page.
func CacheKey(name, code string) string {
	return name + "_" + code
}

// GetTownInfo returns the record for (name, code), or false when the town
// could not be found for any reason. Failures are logged here and never
// returned to the caller.
func (s *TownService) GetTownInfo(ctx context.Context, name, code string) (*models.TownRecord, bool) {
	key := CacheKey(name, code)

	if town, ok := s.cache.Get(key); ok {
		log.Info().Str("town", name).Str("code", code).Msg("returning cached data")
		return town, true
	}

	// The fetch outlives a cancelled caller so waiters sharing the flight,
	// and the cache, still get its result.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (interface{}, error) {
		if town, ok := s.cache.Get(key); ok {
			return town, nil
		}

		town, err := s.fetcher.FetchTown(fetchCtx, name, code)
		if err != nil {
			logFailure(name, code, err)
			return nil, err
		}

		s.cache.Add(key, town)
		log.Info().Str("town", name).Str("code", code).Msg("successfully fetched data")
		return town, nil
	})

	select {
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Str("town", name).Str("code", code).Msg("lookup abandoned")
		return nil, false
	case res := <-ch:
		if res.Err != nil {
			return nil, false
		}
		return res.Val.(*models.TownRecord), true
	}
}

func logFailure(name, code string, err error) {
	var ev *zerolog.Event
	switch scraper.KindOf(err) {
	case scraper.KindMissingElement:
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev = ev.Err(err).
		Str("town", name).
		Str("code", code).
		Stringer("kind", scraper.KindOf(err))

	var fe *scraper.FetchError
	if errors.As(err, &fe) && fe.Text != "" {
		ev = ev.Str("text", fe.Text)
	}
	ev.Msg("error fetching town info")
}
