package tiercache

import "time"

const defaultGlobalTTL = 10 * time.Minute

// DefaultTTLTable maps semantic cache categories to their default TTL.
// Options.TTLByCategory overlays these; an explicit per-call TTL always
// wins over the category default, which wins over Options.DefaultTTL.
func DefaultTTLTable() map[string]time.Duration {
	return map[string]time.Duration{
		"static":      365 * 24 * time.Hour,
		"api":         5 * time.Minute,
		"database":    time.Hour,
		"session":     24 * time.Hour,
		"user":        30 * time.Minute,
		"calculation": 15 * time.Minute,
		"reports":     2 * time.Hour,
		"metadata":    6 * time.Hour,
	}
}

// resolveTTL applies the precedence chain: explicit ttl, then category
// default, then global default. Unknown categories fall back to the
// global default rather than failing mid-flight.
func (c *cache[V]) resolveTTL(ttl time.Duration, category string) (time.Duration, error) {
	if ttl < 0 {
		return 0, ErrInvalidTTL
	}
	if ttl > 0 {
		return ttl, nil
	}
	if category != "" {
		if d, ok := c.ttlByCat[category]; ok {
			return d, nil
		}
		c.log.Debug("unknown ttl category, using global default", Fields{"category": category})
	}
	return c.defaultTTL, nil
}
