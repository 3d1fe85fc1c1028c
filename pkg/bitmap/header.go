package bitmap

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	FileHeaderSize  = 14
	InfoHeaderSize  = 40
	TotalHeaderSize = FileHeaderSize + InfoHeaderSize

	// PixelsPerMeter72DPI is 72 dots per inch expressed in pixels per meter.
	PixelsPerMeter72DPI = 2835

	// CompressionRGB is BI_RGB, no compression.
	CompressionRGB = 0
)

var magic = [2]byte{'B', 'M'}

// FileHeader is the BITMAPFILEHEADER structure.
type FileHeader struct {
	Magic     [2]byte
	FileSize  uint32 // size of the whole file in bytes
	Reserved0 uint16
	Reserved1 uint16
	Offset    uint32 // byte offset of the pixel array
}

// InfoHeader is the BITMAPINFOHEADER structure.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32 // negative for top-down rows
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32 // pixel array size including row padding
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	PaletteSize     uint32
	ImportantColors uint32
}

// rowPadding is the number of zero bytes that brings a row of width pixels to
// a multiple of four bytes. For 3 byte pixels this always equals width%4.
func rowPadding(width int) int {
	return (4 - (width*bytesPerPixel)%4) % 4
}

func paddedRowSize(width int) int {
	return width*bytesPerPixel + rowPadding(width)
}

// CheckDimensions reports ErrDimensionOverflow when a width x height picture
// cannot be stored as a 24-bit BMP: either side outside int32 or a file
// larger than 4 GiB. It allocates nothing, so callers can run it before
// decoding untrusted input.
func CheckDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return errors.Wrapf(ErrDimensionOverflow, "negative size %dx%d", width, height)
	}
	_, err := imageSize(uint64(width), uint64(height))
	return err
}

// imageSize returns the padded pixel array size for width x rows.
func imageSize(width, rows uint64) (uint64, error) {
	if width > math.MaxInt32 {
		return 0, errors.Wrapf(ErrDimensionOverflow, "width %d", width)
	}
	if rows > math.MaxInt32 {
		return 0, errors.Wrapf(ErrDimensionOverflow, "height %d", rows)
	}

	size := uint64(paddedRowSize(int(width))) * rows
	if size+TotalHeaderSize > math.MaxUint32 {
		return 0, errors.Wrapf(ErrDimensionOverflow, "image size %d", size)
	}
	return size, nil
}

// BuildHeaders computes both headers for img.
func BuildHeaders(img *Image) (FileHeader, InfoHeader, error) {
	size, err := imageSize(uint64(img.Width), uint64(img.Rows()))
	if err != nil {
		return FileHeader{}, InfoHeader{}, err
	}

	info := InfoHeader{
		Size:            InfoHeaderSize,
		Width:           int32(img.Width),
		Height:          img.Height,
		Planes:          1,
		BitsPerPixel:    uint16(img.BitsPerPixel()),
		Compression:     CompressionRGB,
		ImageSize:       uint32(size),
		XPixelsPerMeter: PixelsPerMeter72DPI,
		YPixelsPerMeter: PixelsPerMeter72DPI,
	}

	return fileHeaderFor(&info), info, nil
}

func fileHeaderFor(info *InfoHeader) FileHeader {
	return FileHeader{
		Magic:    magic,
		FileSize: info.ImageSize + TotalHeaderSize,
		Offset:   TotalHeaderSize,
	}
}

// Bytes returns the packed 14 byte little endian form.
func (h *FileHeader) Bytes() []byte {
	b := make([]byte, FileHeaderSize)
	copy(b[0:2], h.Magic[:])
	binary.LittleEndian.PutUint32(b[2:6], h.FileSize)
	binary.LittleEndian.PutUint16(b[6:8], h.Reserved0)
	binary.LittleEndian.PutUint16(b[8:10], h.Reserved1)
	binary.LittleEndian.PutUint32(b[10:14], h.Offset)
	return b
}

func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	return int64(n), err
}

// Bytes returns the packed 40 byte little endian form.
func (h *InfoHeader) Bytes() []byte {
	b := make([]byte, InfoHeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Size)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:14], h.Planes)
	binary.LittleEndian.PutUint16(b[14:16], h.BitsPerPixel)
	binary.LittleEndian.PutUint32(b[16:20], h.Compression)
	binary.LittleEndian.PutUint32(b[20:24], h.ImageSize)
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.XPixelsPerMeter))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.YPixelsPerMeter))
	binary.LittleEndian.PutUint32(b[32:36], h.PaletteSize)
	binary.LittleEndian.PutUint32(b[36:40], h.ImportantColors)
	return b
}

func (h *InfoHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	return int64(n), err
}
