package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photosite/internal/catalog"
	"photosite/internal/dating"
	"photosite/internal/sheet"
)

// previewRows is the number of rows shown without --write.
const previewRows = 10

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List images with their dates as spreadsheet rows",
		Long: `Scan finds the images in a folder, dates each one (file name, EXIF,
OS metadata, then modification time), sorts them oldest first, and numbers
them 001, 002, ... The rows are previewed; --write saves them as .xlsx or
.csv for the build command.`,
		Args: cobra.NoArgs,
		RunE: a.runScan,
	}
	f := cmd.Flags()
	f.String("dir", "", "folder with images (default from config: images)")
	f.BoolP("recursive", "r", false, "include subfolders")
	f.Bool("write", false, "write the sheet instead of previewing it")
	f.String("out", "", "sheet to write (default <dir>/entries.xlsx)")
	f.String("base-url", "", "fill the Link column with {base-url}/e/{ID}.html")
	f.Bool("desc-from-name", false, "fill the description from the file name")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, args []string) error {
	sc := a.cfg.Scan
	baseURL := a.cfg.BaseURL
	write := false
	overrideString(cmd, "dir", &sc.Dir)
	overrideBool(cmd, "recursive", &sc.Recursive)
	overrideBool(cmd, "write", &write)
	overrideString(cmd, "out", &sc.Out)
	overrideString(cmd, "base-url", &baseURL)
	overrideBool(cmd, "desc-from-name", &sc.DescFromName)
	if sc.Dir == "" {
		return fmt.Errorf("--dir is required")
	}

	res, err := catalog.NewScanner(a.logger).Scan(sc.Dir, catalog.Options{
		Recursive:    sc.Recursive,
		BaseURL:      baseURL,
		DescFromName: sc.DescFromName,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(res.Rows) == 0 {
		fmt.Fprintln(out, "No images found.")
		return nil
	}

	fields := []zap.Field{zap.Int("images", len(res.Rows))}
	for _, src := range dating.ScanChain {
		fields = append(fields, zap.Int(src.String(), res.Sources[src]))
	}
	a.logger.Info("timestamp sources", fields...)

	if !write {
		res.Preview(out, previewRows)
		return nil
	}

	path := sc.Out
	if path == "" {
		path = filepath.Join(sc.Dir, "entries.xlsx")
	}
	if err := sheet.Write(path, res.Rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote sheet: %s (%d rows)\n", path, len(res.Rows))
	return nil
}
