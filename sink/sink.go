// Package sink delivers finished images to their destination.
package sink

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/image/bmp"
	googleopt "google.golang.org/api/option"

	"whitted/rasterimage"
)

type Sink interface {
	Write(ctx context.Context, im *rasterimage.Image) error
}

type Format int

const (
	PNG Format = iota
	BMP
	Raster
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case Raster:
		return "raster"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromName picks the encoding from the extension of name.
func FormatFromName(name string) (Format, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".raster":
		return Raster, nil
	default:
		return 0, fmt.Errorf("unsupported output extension %q (want .png, .bmp, or .raster)", ext)
	}
}

func Encode(w io.Writer, im *rasterimage.Image, format Format) error {
	switch format {
	case PNG:
		if err := png.Encode(w, im.ToImage()); err != nil {
			return fmt.Errorf("while encoding png: %w", err)
		}
	case BMP:
		if err := bmp.Encode(w, im.ToImage()); err != nil {
			return fmt.Errorf("while encoding bmp: %w", err)
		}
	case Raster:
		if err := rasterimage.Write(im, w); err != nil {
			return fmt.Errorf("while encoding raster: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %v", format)
	}
	return nil
}

// File writes to a local path.
type File struct {
	Path   string
	Format Format
}

func (f *File) Write(ctx context.Context, im *rasterimage.Image) error {
	out, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("while creating output file: %w", err)
	}

	if err := Encode(out, im, f.Format); err != nil {
		out.Close()
		return fmt.Errorf("while writing %s: %w", f.Path, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing output file: %w", err)
	}

	return nil
}

// GCS writes to an object in Google Cloud Storage.
type GCS struct {
	Client *storage.Client
	Bucket string
	Object string
	Format Format
}

func (g *GCS) Write(ctx context.Context, im *rasterimage.Image) error {
	tracer := otel.Tracer("whitted/sink")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GCS.Write")
	defer span.End()

	span.SetAttributes(attribute.String("bucket", g.Bucket), attribute.String("object", g.Object))

	w := g.Client.Bucket(g.Bucket).Object(g.Object).NewWriter(ctx)

	// Disable chunking.  Images are small enough to send in one request.
	w.ChunkSize = 0
	w.ContentType = contentType(g.Format)

	if err := Encode(w, im, g.Format); err != nil {
		w.Close()
		err := fmt.Errorf("while writing to object writer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := w.Close(); err != nil {
		err := fmt.Errorf("while closing object writer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func contentType(f Format) string {
	switch f {
	case PNG:
		return "image/png"
	case BMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// ParseGCSURL splits gs://bucket/object.  ok is false if u is not a GCS URL
// or names no object.
func ParseGCSURL(u string) (bucket, object string, ok bool) {
	rest := strings.TrimPrefix(u, "gs://")
	if rest == u {
		return "", "", false
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// New returns the sink for output, which is either a local path or a
// gs://bucket/object URL.  The returned close function releases any client
// New created.
func New(ctx context.Context, output string, opts ...googleopt.ClientOption) (Sink, func() error, error) {
	format, err := FormatFromName(output)
	if err != nil {
		return nil, nil, err
	}

	if !strings.HasPrefix(output, "gs://") {
		return &File{Path: output, Format: format}, func() error { return nil }, nil
	}

	bucket, object, ok := ParseGCSURL(output)
	if !ok {
		return nil, nil, fmt.Errorf("malformed GCS output %q (want gs://bucket/object)", output)
	}

	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("while creating GCS client: %w", err)
	}

	return &GCS{Client: gcs, Bucket: bucket, Object: object, Format: format}, gcs.Close, nil
}
