package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the drop folder watcher.
type Options struct {
	// Include lists the base-name patterns that are reported. Empty reports every file.
	Include        []string
	IgnorePatterns []string
	SettleDelay    time.Duration
	IgnoreHidden   bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 250 * time.Millisecond
	}

	// nil means "not configured"; an explicit empty slice keeps IgnoreHidden as given.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"*.tmp",
			"*.part",
			"*.swp",
			"Thumbs.db",
		}
		o.IgnoreHidden = true
	}
}

// accepts reports whether an event for path should be emitted.
func (o *Options) accepts(path string) bool {
	base := filepath.Base(path)

	if o.IgnoreHidden && strings.HasPrefix(base, ".") {
		return false
	}
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return false
		}
	}

	if len(o.Include) == 0 {
		return true
	}
	for _, pattern := range o.Include {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
