// Package provider contains catalog provider adapters (Beatport,
// Traxsource, Bandcamp, iTunes).
//
// The Provider and DetailFetcher interfaces are defined in internal/fixer
// (fixer.Provider, fixer.DetailFetcher), following the Go convention of
// defining interfaces where they are consumed. Each sub-package here
// implements them for a specific catalog; Build wires the configured set
// into the pipeline.
package provider

import (
	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/fixer"
	"github.com/jvegaf/harmony-sub000/internal/logger"
	"github.com/jvegaf/harmony-sub000/internal/provider/bandcamp"
	"github.com/jvegaf/harmony-sub000/internal/provider/beatport"
	"github.com/jvegaf/harmony-sub000/internal/provider/itunes"
	"github.com/jvegaf/harmony-sub000/internal/provider/traxsource"
)

// Build constructs provider adapters for the given configuration entries,
// preserving their order. Unknown names are skipped with a warning so a
// stale config cannot take the whole pipeline down. Clients are built
// fresh per call: each run gets its own instances, nothing is process-wide.
func Build(entries []config.ProviderConfig, log *logger.Logger) []fixer.ProviderEntry {
	var built []fixer.ProviderEntry
	for _, entry := range entries {
		var p fixer.Provider
		switch entry.Name {
		case "beatport":
			p = beatport.New()
		case "traxsource":
			p = traxsource.New()
		case "bandcamp":
			p = bandcamp.New()
		case "itunes":
			p = itunes.New()
		default:
			log.Warn("unknown provider %q in configuration, skipping", entry.Name)
			continue
		}

		built = append(built, fixer.ProviderEntry{
			Provider: p,
			Config: fixer.ProviderConfig{
				Name:       entry.Name,
				Enabled:    entry.Enabled,
				MaxResults: entry.MaxResults,
				Priority:   entry.Priority,
			},
		})
	}
	return built
}
