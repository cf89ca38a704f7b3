package chart

import (
	"context"
	"io"
)

// Figure size of every chart, in inches.
const (
	DefaultWidth  = 12.0
	DefaultHeight = 7.0
)

// Options controls how a series is encoded.
type Options struct {
	Format Format
	DPI    int
	Width  float64 // inches
	Height float64 // inches
}

// Renderer draws one prepared series into w.
type Renderer interface {
	Render(ctx context.Context, s Series, opts Options, w io.Writer) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, s Series, opts Options, w io.Writer) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, s Series, opts Options, w io.Writer) error {
	return f(ctx, s, opts, w)
}
