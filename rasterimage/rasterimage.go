// Package rasterimage is an 8-bit RGB raster with a compact on-disk form.
//
// The file layout is a little-endian uint64 header length, a protobuf
// encoded google.protobuf.Struct header, and then the zlib compressed pixel
// rows.
package rasterimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const dataLayoutVersion = 1

// Image stores pixels row-major, three bytes per pixel, with row 0 at the
// top.
type Image struct {
	RowSize, ColSize int
	Pix              []uint8

	// Metadata is carried in the file header.  It never affects pixels.
	Metadata map[string]string
}

func New(rowSize, colSize int) *Image {
	im := &Image{}
	im.Resize(rowSize, colSize)
	return im
}

func (im *Image) Resize(rowSize, colSize int) {
	im.RowSize = rowSize
	im.ColSize = colSize
	im.Pix = make([]uint8, rowSize*colSize*3)
}

func (im *Image) Set(r, c int, px [3]uint8) {
	idx := (r*im.ColSize + c) * 3
	copy(im.Pix[idx:idx+3], px[:])
}

func (im *Image) At(r, c int) [3]uint8 {
	idx := (r*im.ColSize + c) * 3
	return [3]uint8{im.Pix[idx], im.Pix[idx+1], im.Pix[idx+2]}
}

// Cut copies out the rectangle [rowSrc, rowLim) x [colSrc, colLim).
func (im *Image) Cut(rowSrc, rowLim, colSrc, colLim int) *Image {
	dst := New(rowLim-rowSrc, colLim-colSrc)
	for r := rowSrc; r < rowLim; r++ {
		srcStart := (r*im.ColSize + colSrc) * 3
		srcEnd := (r*im.ColSize + colLim) * 3
		dstStart := (r - rowSrc) * dst.ColSize * 3
		copy(dst.Pix[dstStart:], im.Pix[srcStart:srcEnd])
	}
	return dst
}

// Paste copies all of src into im with its top left corner at (rowSrc,
// colSrc).
func (im *Image) Paste(src *Image, rowSrc, colSrc int) {
	for r := 0; r < src.RowSize; r++ {
		srcStart := r * src.ColSize * 3
		srcEnd := (r + 1) * src.ColSize * 3
		dstStart := ((r+rowSrc)*im.ColSize + colSrc) * 3
		copy(im.Pix[dstStart:], src.Pix[srcStart:srcEnd])
	}
}

// ToImage converts to the standard library representation for encoding.
func (im *Image) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.ColSize, im.RowSize))
	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			px := im.At(r, c)
			out.SetRGBA(c, r, color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xff})
		}
	}
	return out
}

func (im *Image) header() (*structpb.Struct, error) {
	meta := map[string]interface{}{}
	for k, v := range im.Metadata {
		meta[k] = v
	}

	return structpb.NewStruct(map[string]interface{}{
		"rowSize":           float64(im.RowSize),
		"colSize":           float64(im.ColSize),
		"dataLayoutVersion": float64(dataLayoutVersion),
		"metadata":          meta,
	})
}

const (
	maxHeaderLength = 1 << 20

	// Bounds rowSize*colSize so the pixel buffer size cannot overflow.
	maxPixels = 1 << 28
)

// ReadHeader reads only the header of a raster file, leaving in positioned
// at the start of the compressed body.
func ReadHeader(in io.Reader) (*structpb.Struct, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}

	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	return hdr, nil
}

func Read(in io.Reader) (*Image, error) {
	hdr, err := ReadHeader(in)
	if err != nil {
		return nil, err
	}

	fields := hdr.GetFields()
	if v := fields["dataLayoutVersion"].GetNumberValue(); v != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", v)
	}

	rowF := fields["rowSize"].GetNumberValue()
	colF := fields["colSize"].GetNumberValue()
	if !(rowF >= 0 && colF >= 0 && rowF*colF <= maxPixels) {
		return nil, fmt.Errorf("bad image size %vx%v", rowF, colF)
	}
	rowSize, colSize := int(rowF), int(colF)

	im := New(rowSize, colSize)
	for k, v := range fields["metadata"].GetStructValue().GetFields() {
		if im.Metadata == nil {
			im.Metadata = map[string]string{}
		}
		im.Metadata[k] = v.GetStringValue()
	}

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if _, err := io.ReadFull(zipReader, im.Pix); err != nil {
		return nil, fmt.Errorf("while reading pixels: %w", err)
	}

	return im, nil
}

func ReadFromFile(name string) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func Write(im *Image, w io.Writer) error {
	hdr, err := im.header()
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.MarshalOptions{Deterministic: true}.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if _, err := zipWriter.Write(im.Pix); err != nil {
		return fmt.Errorf("while writing pixels: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
