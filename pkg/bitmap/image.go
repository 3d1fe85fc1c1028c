package bitmap

import (
	"image"
	"image/color"
)

const bytesPerPixel = 3

// NewImage allocates a zeroed RGB image. Rows are stored bottom-up unless
// topDown is set, in which case the stored height is negative. Sizes that
// CheckDimensions rejects return ErrDimensionOverflow without allocating.
func NewImage(width, height int, topDown bool) (*Image, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}

	h := int32(height)
	if topDown {
		h = -h
	}
	return &Image{
		Width:  uint32(width),
		Height: h,
		Pix:    make([]byte, width*height*bytesPerPixel),
	}, nil
}

// FromImage copies src into a new RGB image. Alpha is dropped.
func FromImage(src image.Image, topDown bool) (*Image, error) {
	b := src.Bounds()
	dst, err := NewImage(b.Dx(), b.Dy(), topDown)
	if err != nil {
		return nil, err
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}

	return dst, nil
}

// Image is a flat 24-bit RGB buffer without row padding. The sign of Height
// selects the storage order of rows: positive means the first row in Pix is
// the bottom row of the picture, negative means it is the top row.
// It implements the draw.Image interface.
type Image struct {
	Width  uint32
	Height int32
	Pix    []byte
}

func (m *Image) BytesPerPixel() int {
	return bytesPerPixel
}

func (m *Image) BitsPerPixel() int {
	return bytesPerPixel * 8
}

// Rows returns the number of stored rows, |Height|.
func (m *Image) Rows() int {
	if m.Height < 0 {
		return -int(m.Height)
	}
	return int(m.Height)
}

func (m *Image) TopDown() bool {
	return m.Height < 0
}

func (m *Image) stride() int {
	return int(m.Width) * bytesPerPixel
}

// offset maps a visual coordinate to the index of its first byte in Pix.
func (m *Image) offset(x, y int) int {
	row := y
	if !m.TopDown() {
		row = m.Rows() - 1 - y
	}
	return row*m.stride() + x*bytesPerPixel
}

// Bounds implements the image.Image (and draw.Image) interface.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(m.Width), m.Rows())
}

// ColorModel implements the image.Image (and draw.Image) interface.
func (m *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements the image.Image (and draw.Image) interface.
func (m *Image) At(x, y int) color.Color {
	if !image.Pt(x, y).In(m.Bounds()) {
		return color.RGBA{}
	}
	i := m.offset(x, y)
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 0xFF}
}

// Set implements the draw.Image interface.
func (m *Image) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(m.Bounds()) {
		return
	}
	// premultiplied, i.e. composited over black
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	i := m.offset(x, y)
	m.Pix[i] = rgba.R
	m.Pix[i+1] = rgba.G
	m.Pix[i+2] = rgba.B
}
