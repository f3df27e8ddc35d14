package report

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ImageResolver loads stored upload files by their recorded relative path.
// *storage.ImageStore satisfies it.
type ImageResolver interface {
	Read(relativePath string) ([]byte, error)
	Exists(relativePath string) bool
}

func imageType(relativePath string) string {
	switch strings.ToLower(path.Ext(relativePath)) {
	case ".png":
		return "PNG"
	case ".gif":
		return "GIF"
	default:
		return "JPG"
	}
}

// placeImage draws a stored image at the given box. It reports false when the
// path is empty or no longer resolves, so callers can fall back to a
// placeholder the way the on-screen views do.
func (d *document) placeImage(relativePath string, x, y, w, h float64) bool {
	if d.images == nil || relativePath == "" || !d.images.Exists(relativePath) {
		return false
	}
	name, ok := d.registered[relativePath]
	if !ok {
		data, err := d.images.Read(relativePath)
		if err != nil {
			return false
		}
		name = fmt.Sprintf("upload-%d", len(d.registered))
		opts := gofpdf.ImageOptions{ImageType: imageType(relativePath)}
		if info := d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data)); info == nil {
			return false
		}
		d.registered[relativePath] = name
	}
	d.pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: imageType(relativePath)}, 0, "")
	return true
}
