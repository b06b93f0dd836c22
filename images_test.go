package pubsite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T, path string, w, h int, format string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func decodeConfig(t *testing.T, path string) (image.Config, string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg, format
}

func TestCopyAssets(t *testing.T) {
	src := filepath.Join(t.TempDir(), "assets")
	dst := filepath.Join(t.TempDir(), "public", "assets")

	writeImage(t, filepath.Join(src, "img", "wide.png"), 400, 200, "png")
	writeImage(t, filepath.Join(src, "img", "wide.jpg"), 300, 150, "jpeg")
	writeImage(t, filepath.Join(src, "img", "small.png"), 50, 20, "png")
	writeFile(t, src, "css/site.css", "body{}")
	writeFile(t, src, ".DS_Store", "junk")

	stats, err := CopyAssets(src, dst, 100)
	if err != nil {
		t.Fatalf("CopyAssets: %v", err)
	}
	if stats.Copied != 4 || stats.Scaled != 2 {
		t.Errorf("stats = %+v, want 4 copied, 2 scaled", stats)
	}

	tests := []struct {
		file   string
		width  int
		height int
		format string
	}{
		{"img/wide.png", 100, 50, "png"},
		{"img/wide.jpg", 100, 50, "jpeg"},
		{"img/small.png", 50, 20, "png"},
	}
	for _, tt := range tests {
		cfg, format := decodeConfig(t, filepath.Join(dst, tt.file))
		if cfg.Width != tt.width || cfg.Height != tt.height {
			t.Errorf("%s is %dx%d, want %dx%d", tt.file, cfg.Width, cfg.Height, tt.width, tt.height)
		}
		if format != tt.format {
			t.Errorf("%s format = %s, want %s", tt.file, format, tt.format)
		}
	}

	css, err := os.ReadFile(filepath.Join(dst, "css", "site.css"))
	if err != nil || string(css) != "body{}" {
		t.Errorf("css not copied verbatim: %q, %v", css, err)
	}
	if _, err := os.Stat(filepath.Join(dst, ".DS_Store")); !os.IsNotExist(err) {
		t.Error("hidden files should not be copied")
	}
}

func TestCopyAssetsMissingDir(t *testing.T) {
	stats, err := CopyAssets(filepath.Join(t.TempDir(), "none"), t.TempDir(), 100)
	if err != nil || stats.Copied != 0 {
		t.Errorf("CopyAssets(missing) = %+v, %v", stats, err)
	}
}

func TestCopyAssetsReportsBadImage(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "broken.png", "not a png")
	writeFile(t, src, "ok.txt", "fine")

	stats, err := CopyAssets(src, t.TempDir(), 100)
	var fe *FileError
	if !errors.As(err, &fe) || filepath.Base(fe.Path) != "broken.png" {
		t.Errorf("expected a FileError for broken.png, got %v", err)
	}
	if stats.Copied != 1 {
		t.Errorf("Copied = %d, want 1", stats.Copied)
	}
}
