package pubsite

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/image/draw"
)

const jpegQuality = 85

// AssetStats summarizes a CopyAssets run.
type AssetStats struct {
	Copied int
	Scaled int
}

// CopyAssets copies every file under src into dst, keeping the relative
// layout. JPEG and PNG images wider than maxWidth are downscaled to maxWidth
// and re-encoded in their own format. A missing src is not an error. Files
// that fail are reported together; the rest are still copied.
func CopyAssets(src, dst string, maxWidth int) (AssetStats, error) {
	var stats AssetStats
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return stats, nil
	}
	var errs error
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = multierr.Append(errs, &FileError{Path: path, Err: err})
			return nil
		}
		if d.IsDir() {
			if path != src && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		scaled, err := copyAsset(path, filepath.Join(dst, rel), maxWidth)
		if err != nil {
			errs = multierr.Append(errs, &FileError{Path: path, Err: err})
			return nil
		}
		stats.Copied++
		if scaled {
			stats.Scaled++
		}
		return nil
	})
	return stats, multierr.Append(walkErr, errs)
}

func copyAsset(src, dst string, maxWidth int) (scaled bool, err error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return false, err
	}
	if maxWidth > 0 && isScalableImage(src) {
		out, ok, err := downscaleImage(bytes.NewReader(data), maxWidth)
		if err != nil {
			return false, err
		}
		if ok {
			data, scaled = out, true
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	return scaled, os.WriteFile(dst, data, 0o644)
}

func isScalableImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// downscaleImage decodes an image from src and, if it is wider than
// maxWidth, resizes it keeping the aspect ratio and encodes it in its
// original format. ok is false when the image already fits.
func downscaleImage(src io.Reader, maxWidth int) (out []byte, ok bool, err error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return nil, false, nil
	}
	newH := max(h*maxWidth/w, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, dst)
	default:
		return nil, false, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), true, nil
}
