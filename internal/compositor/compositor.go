package compositor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"vnforge/internal/character"
	"vnforge/internal/imageload"
	"vnforge/internal/manifest"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 800
)

type Options struct {
	Width  int
	Height int
}

// Compositor flattens a character spec into a single fixed-size image.
type Compositor struct {
	manifest manifest.Manifest
	catalog  character.Catalog
	loader   imageload.Loader
	width    int
	height   int
	logger   *zap.Logger
}

func New(m manifest.Manifest, catalog character.Catalog, loader imageload.Loader, logger *zap.Logger, opts Options) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if m == nil {
		m = manifest.Manifest{}
	}
	return &Compositor{
		manifest: m,
		catalog:  catalog,
		loader:   loader,
		width:    opts.Width,
		height:   opts.Height,
		logger:   logger.Named("compositor"),
	}
}

func (c *Compositor) Size() (int, int) {
	return c.width, c.height
}

// Render loads every selected layer concurrently, waits for all of them and
// draws them in character.DrawOrder. Layers that fail to load are skipped.
func (c *Compositor) Render(ctx context.Context, spec character.Spec) (*image.NRGBA, error) {
	layers := make([]image.Image, len(character.DrawOrder))

	var g errgroup.Group
	for i, category := range character.DrawOrder {
		ref, ok := c.manifest.Reference(c.catalog, spec, category)
		if !ok {
			continue
		}
		g.Go(func() error {
			img, err := c.loader.Load(ctx, ref)
			if err != nil {
				c.logger.Debug("skipping layer",
					zap.String("category", string(category)),
					zap.String("reference", ref),
					zap.Error(err))
				return nil
			}
			layers[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading layers: %w", err)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), layer, layer.Bounds(), draw.Over, nil)
	}
	return canvas, nil
}

// RenderPNG writes the composite as a PNG image.
func (c *Compositor) RenderPNG(ctx context.Context, spec character.Spec, w io.Writer) error {
	img, err := c.Render(ctx, spec)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// RenderDataURI returns the composite as a PNG data URI.
func (c *Compositor) RenderDataURI(ctx context.Context, spec character.Spec) (string, error) {
	img, err := c.Render(ctx, spec)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(img)
}

func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
