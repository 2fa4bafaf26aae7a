// Package logging sets up the env-driven verbosity filter on top of logrus,
// generalizing the teacher's src/api/router.go logrusMiddleware (plain
// logrus.Info/logrus.Error calls gated on status code) into a
// RUST_LOG-style filter with per-component overrides.
package logging

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu        sync.RWMutex
	overrides = map[string]logrus.Level{}
	tagged    = map[string]*logrus.Logger{}
)

// Init parses a LEVEL-style filter string such as "info" or
// "info,selector=debug,resolver=trace" and applies it: the bare value (if
// any) becomes the root logrus level, and each "component=level" pair
// becomes a per-component override consulted by For.
func Init(filter string) error {
	mu.Lock()
	defer mu.Unlock()

	overrides = map[string]logrus.Level{}
	tagged = map[string]*logrus.Logger{}

	if strings.TrimSpace(filter) == "" {
		logrus.SetLevel(logrus.InfoLevel)
		return nil
	}

	parts := strings.Split(filter, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "=") {
			kv := strings.SplitN(part, "=", 2)
			lvl, err := parseLevel(kv[1])
			if err != nil {
				return err
			}
			overrides[kv[0]] = lvl
			continue
		}
		lvl, err := parseLevel(part)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
	}

	return nil
}

func parseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		// logrus has no "off" level; PanicLevel is the narrowest level and
		// admits only Panic entries, which this server never emits on the
		// hot path.
		return logrus.PanicLevel, nil
	default:
		return logrus.ParseLevel(s)
	}
}

// For returns a logrus.Entry tagged with component, honoring any per-
// component level override registered by Init.
func For(component string) *logrus.Entry {
	mu.RLock()
	lvl, ok := overrides[component]
	logger, cached := tagged[component]
	mu.RUnlock()

	if !ok {
		return logrus.WithField("component", component)
	}
	if cached {
		return logger.WithField("component", component)
	}

	logger = logrus.New()
	logger.SetFormatter(logrus.StandardLogger().Formatter)
	logger.SetOutput(logrus.StandardLogger().Out)
	logger.SetLevel(lvl)

	mu.Lock()
	tagged[component] = logger
	mu.Unlock()

	return logger.WithField("component", component)
}
