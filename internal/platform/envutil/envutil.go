package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// LookupFunc matches os.LookupEnv so callers can substitute a fixed map in tests.
type LookupFunc func(key string) (string, bool)

func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func lookup(key string, log *logger.Logger) (string, bool) {
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	if log != nil {
		if !ok || val == "" {
			log.Debug("Environment variable not found, using default", "env_var", key)
		} else {
			log.Debug("Environment variable found", "env_var", key)
		}
	}
	return val, ok && val != ""
}

func String(key, def string, log *logger.Logger) string {
	if v, ok := lookup(key, log); ok {
		return v
	}
	return def
}

func Int(key string, def int, log *logger.Logger) int {
	v, ok := lookup(key, log)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not an int, using default", "env_var", key, "default", def)
		}
		return def
	}
	return i
}

func Bool(key string, def bool, log *logger.Logger) bool {
	v, ok := lookup(key, log)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func Float(key string, def float64, log *logger.Logger) float64 {
	v, ok := lookup(key, log)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Duration accepts Go duration strings ("90s") or a bare number of seconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok := lookup(key, log)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func CSV(key string, def []string, log *logger.Logger) []string {
	v, ok := lookup(key, log)
	if !ok {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
