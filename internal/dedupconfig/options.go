// Package dedupconfig reads alert deduplication settings from config.
package dedupconfig

import (
	"github.com/cristianoliveira/motinbox/internal/config"
	"github.com/cristianoliveira/motinbox/internal/dedup"
)

// Load returns deduplication options from the loaded configuration.
func Load() dedup.Options {
	criteria := dedup.ParseCriteria(config.Get("alert_dedup_criteria", string(dedup.CriteriaTitleBody)))
	window := config.GetDuration("alert_dedup_window", 0)
	return dedup.Options{Criteria: criteria, Window: window}
}
