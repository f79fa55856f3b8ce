package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/tags"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".wav":  true,
	".aiff": true,
	".aif":  true,
}

func cmdScan() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Import audio files into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := setupLogger(cfg)
			defer log.Close()

			db, err := library.Bootstrap(config.ExpandHome(cfg.DatabasePath))
			if err != nil {
				return fmt.Errorf("opening library: %w", err)
			}
			defer db.Close()
			store := library.NewStore(db)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			log.Info("Scanning %s ...", root)

			var (
				tracks  []*library.Track
				skipped int
			)
			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(path))] {
					return nil
				}

				track, err := tags.ReadTrack(path)
				if err != nil {
					log.Warn("Skipping %s: %v", path, err)
					skipped++
					return nil
				}
				tracks = append(tracks, track)
				return nil
			})
			if err != nil {
				return err
			}

			if err := store.InsertTracks(ctx, tracks); err != nil {
				return fmt.Errorf("importing tracks: %w", err)
			}

			log.Info("=== Scan completed: %d imported, %d skipped ===", len(tracks), skipped)
			return nil
		},
	}

	return cmd
}
