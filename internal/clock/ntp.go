package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/logic"
)

// DefaultNTPServer is queried when no server is configured.
const DefaultNTPServer = "pool.ntp.org"

// NetworkTime fetches an absolute time from the network.
type NetworkTime interface {
	FetchTime(ctx context.Context) (time.Time, error)
}

// NTPFetcher queries an NTP server.
type NTPFetcher struct {
	Server  string
	Timeout time.Duration

	// query is replaced in tests.
	query func(host string, opt ntp.QueryOptions) (*ntp.Response, error)
}

// NewNTPFetcher creates a fetcher for server with the given timeout.
func NewNTPFetcher(server string, timeout time.Duration) *NTPFetcher {
	if server == "" {
		server = DefaultNTPServer
	}
	return &NTPFetcher{Server: server, Timeout: timeout, query: ntp.QueryWithOptions}
}

// FetchTime queries the server once and validates the response.
func (f *NTPFetcher) FetchTime(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, fmt.Errorf("ntp %s: %w", f.Server, err)
	}
	timeout := f.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}

	resp, err := f.query(f.Server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp query %s: %w", f.Server, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("ntp response %s: %w", f.Server, err)
	}
	return time.Now().Add(resp.ClockOffset), nil
}

// SyncResult describes the outcome of the boot-time sync.
type SyncResult struct {
	Attempted bool
	OK        bool
	Time      logic.Timestamp
	Err       error
}

// SyncOnce fetches the network time once and sets the clock on success.
// Failures are logged and leave the clock unchanged; nothing is retried.
func SyncOnce(ctx context.Context, src *Source, fetcher NetworkTime, loc *time.Location) SyncResult {
	if fetcher == nil {
		return SyncResult{}
	}
	res := SyncResult{Attempted: true}
	if !src.Available() {
		res.Err = ErrNoClock
		log.Warn().Str("component", "clock").Err(res.Err).Msg("time sync skipped")
		return res
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := fetcher.FetchTime(ctx)
	if err != nil {
		res.Err = err
		log.Warn().Str("component", "clock").Err(err).Msg("time sync failed, keeping clock")
		return res
	}

	ts := logic.TimestampOf(t.In(loc))
	if err := src.Set(ts); err != nil {
		res.Err = err
		log.Warn().Str("component", "clock").Err(err).Msg("time sync could not set clock")
		return res
	}
	res.OK = true
	res.Time = ts
	log.Info().Str("component", "clock").Str("time", ts.String()).Msg("clock set from network time")
	return res
}
