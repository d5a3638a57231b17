package collector

import (
	"sync"

	"github.com/rs/zerolog"
)

// CallCounter tracks calls against a provider's daily quota. It is an
// explicitly-owned resource injected into the fetcher, never a package
// global, so tests and parallel fetches stay deterministic.
type CallCounter struct {
	mu    sync.Mutex
	used  int
	limit int
	log   zerolog.Logger
}

// NewCallCounter creates a counter for the given daily limit.
func NewCallCounter(limit int, log zerolog.Logger) *CallCounter {
	return &CallCounter{limit: limit, log: log.With().Str("component", "quota").Logger()}
}

// Inc records one call and returns the remaining budget. It warns when the
// budget runs low and when it is exhausted.
func (c *CallCounter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.used++
	remaining := c.limit - c.used
	c.log.Debug().Int("used", c.used).Int("limit", c.limit).Msg("provider API call")
	if remaining <= 0 {
		c.log.Warn().Int("limit", c.limit).Msg("provider API quota exhausted")
	} else if remaining <= 5 {
		c.log.Warn().Int("remaining", remaining).Msg("provider API quota running low")
	}
	return remaining
}

// Used returns the number of calls recorded so far.
func (c *CallCounter) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Exhausted reports whether the daily limit has been reached.
func (c *CallCounter) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used >= c.limit
}
