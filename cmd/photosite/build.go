package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosite/internal/site"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static site from the sheet and images",
		Long: `Build reads the sheet, checks that every image it names exists, and
writes the site to the output folder: resized images, thumbnails, one page
per entry, and an index. The output folder is replaced on every build.

QR codes need --base-url, the address the site will be published at.
--make-qr writes one PNG per entry; --qrs-pdf and --labels also write
printable sheets (3x5 overview, and a sticker grid in millimetres).`,
		Args: cobra.NoArgs,
		RunE: a.runBuild,
	}
	f := cmd.Flags()
	f.String("sheet", "", "entries sheet, .xlsx or .csv (default entries.xlsx)")
	f.String("xlsx", "", "alias for --sheet")
	f.String("images", "", "folder with the source images (default images)")
	f.String("out", "", "output folder, replaced on every build (default docs)")
	f.String("base-url", "", "URL the site is published at")
	f.Bool("make-qr", false, "write assets/qrcodes/<num>.png for every entry")
	f.Bool("qrs-pdf", false, "write qrcodes.pdf (3x5 per A4 page)")
	f.Bool("labels", false, "write qrcodes_labels.pdf (sticker grid)")
	f.Int("cols", 4, "label columns")
	f.Int("rows", 6, "label rows")
	f.Float64("margin-left-mm", 8, "left page margin of the label sheet")
	f.Float64("margin-top-mm", 8, "top page margin of the label sheet")
	f.Float64("h-gap-mm", 3, "horizontal gap between labels")
	f.Float64("v-gap-mm", 3, "vertical gap between labels")
	f.Bool("no-entry-labels", false, "omit the entry number under each code")
	f.Int("workers", 0, "parallel image workers (default one per CPU)")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	sc := a.cfg.Site
	baseURL := a.cfg.BaseURL
	overrideString(cmd, "xlsx", &sc.Sheet)
	overrideString(cmd, "sheet", &sc.Sheet)
	overrideString(cmd, "images", &sc.Images)
	overrideString(cmd, "out", &sc.Out)
	overrideString(cmd, "base-url", &baseURL)
	overrideInt(cmd, "workers", &sc.Workers)

	labels := a.cfg.LabelOptions()
	overrideInt(cmd, "cols", &labels.Cols)
	overrideInt(cmd, "rows", &labels.Rows)
	overrideFloat(cmd, "margin-left-mm", &labels.MarginLeftMM)
	overrideFloat(cmd, "margin-top-mm", &labels.MarginTopMM)
	overrideFloat(cmd, "h-gap-mm", &labels.HGapMM)
	overrideFloat(cmd, "v-gap-mm", &labels.VGapMM)

	opts := site.Options{
		Sheet:       sc.Sheet,
		Images:      sc.Images,
		Out:         sc.Out,
		BaseURL:     baseURL,
		Labels:      labels,
		EntryLabels: labels.Labels,
	}
	overrideBool(cmd, "make-qr", &opts.MakeQR)
	overrideBool(cmd, "qrs-pdf", &opts.OverviewPDF)
	overrideBool(cmd, "labels", &opts.LabelsPDF)
	if noLabels, _ := cmd.Flags().GetBool("no-entry-labels"); noLabels {
		opts.EntryLabels = false
	}

	cfg := a.cfg.SiteConfig()
	cfg.Workers = sc.Workers
	res, err := site.New(cfg, a.logger).Build(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Site written to %s (%d entries).\n", res.Out, len(res.Entries))
	if res.QRCodes > 0 {
		fmt.Fprintf(out, "QR codes: %d\n", res.QRCodes)
	}
	for _, p := range res.PDFs {
		fmt.Fprintf(out, "PDF: %s\n", p)
	}
	return nil
}
