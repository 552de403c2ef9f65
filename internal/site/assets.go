package site

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photosite/internal/imaging"
)

// writeAssets publishes every distinct image and its thumbnail. Work runs
// on at most cfg.Workers goroutines; each job writes its own files, so the
// result does not depend on scheduling.
func (b *Builder) writeAssets(ctx context.Context, imagesDir, out string, entries []Entry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		if done[e.Asset] {
			continue
		}
		done[e.Asset] = true

		src := filepath.Join(imagesDir, e.Image)
		asset := e.Asset
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.publishImage(src, out, asset)
		})
	}
	return g.Wait()
}

// publishImage writes the scaled image and the thumbnail derived from it.
func (b *Builder) publishImage(src, out, asset string) error {
	img, _, err := imaging.Decode(src)
	if err != nil {
		return err
	}
	_, format := imaging.OutputName(asset)

	full := imaging.FitWidth(imaging.Flatten(img), b.cfg.MaxWidth)
	dst := filepath.Join(out, filepath.FromSlash(ImagesDir), filepath.FromSlash(asset))
	if err := imaging.WriteFile(dst, full, format, b.cfg.ImageQuality); err != nil {
		return fmt.Errorf("publish %s: %w", asset, err)
	}

	thumb := imaging.ScaleToWidth(full, b.cfg.ThumbWidth)
	dst = filepath.Join(out, filepath.FromSlash(ThumbsDir), filepath.FromSlash(asset))
	if err := imaging.WriteFile(dst, thumb, format, b.cfg.ThumbQuality); err != nil {
		return fmt.Errorf("thumbnail %s: %w", asset, err)
	}

	b.logger.Debug("image published",
		zap.String("source", src),
		zap.String("asset", asset),
		zap.Int("width", full.Bounds().Dx()),
	)
	return nil
}
