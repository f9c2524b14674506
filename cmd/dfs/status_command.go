package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-category sync state from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			m := manifest.Load(cfg.Paths.ManifestPath, logging.NewNop())
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(category.All()))
			for _, cat := range category.All() {
				entry := m.Entry(cat)

				onDisk := identityOnDisk(cat.LatestPath(cfg.Paths.DataDir))
				status := entry.EffectiveStatus(onDisk)

				latest := "-"
				size := "-"
				if onDisk != nil {
					latest = humanize.Time(onDisk.ModTime)
					size = humanize.Bytes(uint64(onDisk.Size))
				}
				uploaded := "-"
				if !entry.UploadedAt.IsZero() && status == manifest.StatusSuccess {
					uploaded = entry.UploadedAt.Format("2006-01-02 15:04")
				}
				detail := entry.LastError
				if status == manifest.StatusNever && entry.UploadStatus == manifest.StatusSuccess {
					detail = "latest file changed since upload"
				}

				rows = append(rows, []string{
					cat.DisplayName(),
					latest,
					size,
					fmt.Sprintf("%d", snapshotCount(cat, cfg.Paths.DataDir)),
					string(status),
					uploaded,
					detail,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Latest", "Size", "Snapshots", "Upload", "Uploaded At", "Detail"},
				rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			fmt.Fprintf(out, "Manifest: %s\n", cfg.Paths.ManifestPath)
			return nil
		},
	}
}

func identityOnDisk(path string) *manifest.FileIdentity {
	id, err := manifest.Identify(path)
	if err != nil {
		return nil
	}
	return &id
}

// snapshotCount counts retained historical CSVs for a category, i.e. every
// CSV in its directory except the Latest file.
func snapshotCount(cat category.Category, dataDir string) int {
	entries, err := os.ReadDir(cat.Dir(dataDir))
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == cat.LatestFilename() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			count++
		}
	}
	return count
}
