package bitmap

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Encode writes img to w as an uncompressed 24-bit BMP. Rows are written in
// the order they are stored, the sign of img.Height tells readers which way
// up they are. On error w may hold a partial file and must be discarded.
func Encode(w io.Writer, img *Image) error {
	header, info, err := prepare(img)
	if err != nil {
		return err
	}

	return encode(w, img, &header, &info)
}

// EncodeBytes encodes img into a new buffer sized from its headers.
func EncodeBytes(img *Image) ([]byte, error) {
	header, info, err := prepare(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(int(header.FileSize))
	if err := encode(&buf, img, &header, &info); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// prepare checks img and builds its headers.
func prepare(img *Image) (FileHeader, InfoHeader, error) {
	if img == nil {
		return FileHeader{}, InfoHeader{}, errors.Wrap(ErrInvalidBuffer, "nil image")
	}

	header, info, err := BuildHeaders(img)
	if err != nil {
		return FileHeader{}, InfoHeader{}, err
	}

	want := uint64(img.Width) * uint64(img.Rows()) * bytesPerPixel
	if uint64(len(img.Pix)) != want {
		return FileHeader{}, InfoHeader{}, errors.Wrapf(ErrInvalidBuffer,
			"%dx%d needs %d bytes, got %d", img.Width, img.Height, want, len(img.Pix))
	}

	return header, info, nil
}

func encode(w io.Writer, img *Image, header *FileHeader, info *InfoHeader) error {
	if _, err := header.WriteTo(w); err != nil {
		return wrapIO(err)
	}
	if _, err := info.WriteTo(w); err != nil {
		return wrapIO(err)
	}

	// no rows or zero-width rows, nothing to pack
	if len(img.Pix) == 0 {
		return nil
	}

	bytesPerLine := int(img.Width) * bytesPerPixel
	padding := rowPadding(int(img.Width))

	// one scratch row, the padding tail stays zero
	row := make([]byte, bytesPerLine+padding)
	for offset := 0; offset < len(img.Pix); offset += bytesPerLine {
		swapRow(row[:bytesPerLine], img.Pix[offset:offset+bytesPerLine])
		if _, err := w.Write(row); err != nil {
			return wrapIO(err)
		}
	}

	return nil
}
