package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosite/internal/rename"
)

func newRenameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Convert images to JPEG named YYYY-MM-DD_HHMMSS.jpeg",
		Long: `Rename dates each image (EXIF, then modification time) and converts it
to a JPEG named after that date. Nothing is overwritten: clashing names get
-1, -2, ... and files with identical content are left alone. Without
--apply the plan is only printed.`,
		Args: cobra.NoArgs,
		RunE: a.runRename,
	}
	f := cmd.Flags()
	f.String("dir", "", "folder with images (default from config: images)")
	f.BoolP("recursive", "r", false, "include subfolders")
	f.BoolP("apply", "x", false, "convert and rename (default is dry-run)")
	f.Int("quality", rename.DefaultQuality, "JPEG quality 1..100")
	return cmd
}

func (a *app) runRename(cmd *cobra.Command, args []string) error {
	rc := a.cfg.Rename
	apply := false
	overrideString(cmd, "dir", &rc.Dir)
	overrideBool(cmd, "recursive", &rc.Recursive)
	overrideBool(cmd, "apply", &apply)
	overrideInt(cmd, "quality", &rc.Quality)
	if rc.Dir == "" {
		return fmt.Errorf("--dir is required")
	}
	if rc.Quality < 1 || rc.Quality > 100 {
		return fmt.Errorf("--quality must be 1..100, got %d", rc.Quality)
	}

	r := rename.New(a.logger)
	plans, err := r.Plan(rc.Dir, rc.Recursive)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(plans) == 0 {
		fmt.Fprintln(out, "No images found.")
		return nil
	}

	rename.WritePlan(out, plans)
	if !apply {
		fmt.Fprintln(out, "\nDry-run only. Add --apply to convert and rename.")
		return nil
	}

	sum := r.Apply(plans, rc.Quality)
	fmt.Fprintf(out, "\nConverted %d file(s) to JPEG.", sum.Converted)
	if sum.Unchanged > 0 {
		fmt.Fprintf(out, " %d already named.", sum.Unchanged)
	}
	if sum.Duplicates > 0 {
		fmt.Fprintf(out, " %d duplicate(s) skipped.", sum.Duplicates)
	}
	fmt.Fprintln(out)
	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be converted", sum.Failed)
	}
	return nil
}
