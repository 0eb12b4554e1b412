package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"vnforge/internal/errs"
)

// Loader resolves an image reference to a decoded image.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// FileLoader reads references relative to an assets root. References that
// are data URIs are decoded in place.
type FileLoader struct {
	root string
}

func NewFileLoader(root string) *FileLoader {
	return &FileLoader{root: root}
}

func (l *FileLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("%w: empty reference", errs.ErrAssetLoad)
	}
	if IsDataURI(ref) {
		return DecodeDataURI(ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.FromSlash(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", errs.ErrAssetLoad, ref, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", errs.ErrAssetLoad, ref, err)
	}
	return img, nil
}

func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// DecodeDataURI decodes a base64 data URI holding a PNG, JPEG or WebP image.
func DecodeDataURI(uri string) (image.Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, fmt.Errorf("%w: malformed data URI", errs.ErrAssetLoad)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URI is not base64 encoded", errs.ErrAssetLoad)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data URI: %v", errs.ErrAssetLoad, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data URI image: %v", errs.ErrAssetLoad, err)
	}
	return img, nil
}
