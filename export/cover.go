package export

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"ams/config"
	"ams/jpegquality"
	"ams/manuscript"
	"ams/state"
	imgutil "ams/utils/images"
)

const coverJPEGQuality = 85

// coverDPI matches what print-on-demand services expect.
const coverDPI = 300

// buildCover produces the bundle cover JPEG. A configured image file wins,
// otherwise the built-in SVG placeholder is rasterized at the target size.
func buildCover(p *manuscript.Project, env *state.LocalEnv, log *zap.Logger) ([]byte, error) {
	cfg := &env.Cfg.Export.Cover

	img, err := loadCoverImage(cfg, env, log)
	if err != nil {
		return nil, err
	}

	switch cfg.Resize {
	case config.ImageResizeModeNone:
	case config.ImageResizeModeKeepAR:
		img = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	case config.ImageResizeModeStretch:
		img = imaging.Resize(img, cfg.Width, cfg.Height, imaging.Lanczos)
	}

	if imgutil.IsGrayscale(img) {
		log.Warn("Cover image is grayscale", zap.String("project", p.Title))
	}

	out, err := imgutil.EncodeJPEGWithDPI(img, coverJPEGQuality, imgutil.DpiPxPerInch, coverDPI, coverDPI)
	if err != nil {
		return nil, fmt.Errorf("unable to encode cover: %w", err)
	}
	return out, nil
}

func loadCoverImage(cfg *config.CoverConfig, env *state.LocalEnv, log *zap.Logger) (image.Image, error) {
	if len(cfg.DefaultImagePath) != 0 {
		data, err := os.ReadFile(cfg.DefaultImagePath)
		if err != nil {
			return nil, fmt.Errorf("unable to read cover image: %w", err)
		}
		switch strings.ToLower(filepath.Ext(cfg.DefaultImagePath)) {
		case ".svg":
			return imgutil.RasterizeSVGToImage(data, cfg.Width, cfg.Height)
		case ".jpg", ".jpeg":
			if jr, err := jpegquality.NewWithBytes(data); err != nil {
				log.Warn("Unable to detect JPEG quality level of cover source", zap.Error(err))
			} else if q := jr.Quality(); q < coverJPEGQuality {
				log.Warn("Cover source has low JPEG quality", zap.Int("detected", q))
			}
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode cover image: %w", err)
		}
		return img, nil
	}
	return imgutil.RasterizeSVGToImage(env.DefaultCover, cfg.Width, cfg.Height)
}
