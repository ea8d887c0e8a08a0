package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const previewWidth = 400

// Previewer derives a scaled raster preview from a staged payload. PDF
// payloads are rendered through an external conversion tool, which needs
// the payload on disk; the temp files are released on every exit path.
type Previewer struct {
	// convert renders page 1 of the PDF at src into the image at dst.
	// Overridable in tests.
	convert func(ctx context.Context, src, dst string) error
}

func NewPreviewer() *Previewer {
	return &Previewer{convert: magickConvert}
}

func magickConvert(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, "convert", "-density", "150", src+"[0]", dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("convert failed: %v: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// Preview returns the base64 jpeg preview for the payload.
func (p *Previewer) Preview(ctx context.Context, media []byte, contentType string) (string, error) {
	switch {
	case contentType == "application/pdf":
		return p.fromPDF(ctx, media)
	case strings.HasPrefix(contentType, "image/"):
		return p.fromImage(media)
	default:
		return "", fmt.Errorf("cannot preview content type %q", contentType)
	}
}

func (p *Previewer) fromPDF(ctx context.Context, media []byte) (string, error) {
	dir, err := os.MkdirTemp("", "poverty-preview-")
	if err != nil {
		return "", err
	}
	// both the payload file and the rendered image live under dir
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "attachment.pdf")
	dst := filepath.Join(dir, "preview.jpg")

	if err := os.WriteFile(src, media, 0o600); err != nil {
		return "", err
	}
	if err := p.convert(ctx, src, dst); err != nil {
		return "", err
	}

	img, err := imaging.Open(dst)
	if err != nil {
		return "", err
	}
	return encodePreview(imaging.Resize(img, previewWidth, 0, imaging.Lanczos))
}

func (p *Previewer) fromImage(media []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(media))
	if err != nil {
		return "", err
	}
	return encodePreview(imaging.Resize(img, previewWidth, 0, imaging.Lanczos))
}

func encodePreview(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
