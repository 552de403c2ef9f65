package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photosite/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create the images folder and a default photosite.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return initProject(cmd, target, a.cfg)
		},
	}
}

// initProject creates the expected layout below targetDir. Existing
// folders and an existing config file are left alone.
func initProject(cmd *cobra.Command, targetDir string, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initializing photo site at: %s\n\n", targetDir)

	created, skipped := 0, 0

	images := filepath.Join(targetDir, cfg.Site.Images)
	if _, err := os.Stat(images); err == nil {
		fmt.Fprintf(out, "⊘ %s/ (already exists)\n", cfg.Site.Images)
		skipped++
	} else {
		if err := os.MkdirAll(images, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", images, err)
		}
		fmt.Fprintf(out, "✓ %s/ - Drop photos here\n", cfg.Site.Images)
		created++
	}

	confPath := filepath.Join(targetDir, config.DefaultPath)
	if _, err := os.Stat(confPath); err == nil {
		fmt.Fprintf(out, "⊘ %s (already exists)\n", config.DefaultPath)
		skipped++
	} else {
		if err := config.DefaultConfig().Save(confPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s - settings and site texts\n", config.DefaultPath)
		created++
	}

	fmt.Fprintln(out)
	if created > 0 {
		fmt.Fprintf(out, "Created %d item(s)\n", created)
	}
	if skipped > 0 {
		fmt.Fprintf(out, "Skipped %d existing item(s)\n", skipped)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Copy photos to %s/\n", cfg.Site.Images)
	fmt.Fprintln(out, "  2. Run: photosite rename --apply")
	fmt.Fprintln(out, "  3. Run: photosite scan --write --out entries.xlsx, then add descriptions")
	fmt.Fprintln(out, "  4. Run: photosite build")
	return nil
}
