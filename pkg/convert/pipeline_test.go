package convert

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"bmpenc/pkg/bitmap"
	"bmpenc/pkg/sink"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 7, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// headerOnlyPNG returns a PNG signature and IHDR chunk declaring w x h, with
// no pixel data behind it.
func headerOnlyPNG(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	chunk := append([]byte("IHDR"), ihdr...)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func newTestPipeline(fs afero.Fs, opts ...Option) *Pipeline {
	logger := zap.NewNop()
	opts = append([]Option{WithFs(fs)}, opts...)
	return New(sink.NewFs(fs, logger), logger, opts...)
}

func TestOutputName(t *testing.T) {
	cases := map[string]string{
		"photo.png":                         "photo.bmp",
		"dir/sub/a.b.jpeg":                  "a.b.bmp",
		"noext":                             "noext.bmp",
		"https://example.com/img/cat.png?x": "cat.bmp",
		"http://example.com/":               "image.bmp",
	}
	for src, want := range cases {
		assert.Equal(t, want, OutputName(src), src)
	}
}

func TestConvertFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in/a.png", testPNG(t, 5, 3), 0644))

	p := newTestPipeline(fs)
	require.NoError(t, p.Convert("in/a.png", ""))

	bs, err := afero.ReadFile(fs, "a.bmp")
	require.NoError(t, err)
	assert.EqualValues(t, len(bs), binary.LittleEndian.Uint32(bs[2:6]))
	assert.EqualValues(t, 3, int32(binary.LittleEndian.Uint32(bs[22:26])))

	img, err := bmp.Decode(bytes.NewReader(bs))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
	assert.Equal(t, color.RGBA{R: 80, G: 40, B: 7, A: 0xFF}, img.At(4, 2))
}

func TestConvertTopDownFill(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.png", testPNG(t, 10, 6), 0644))

	p := newTestPipeline(fs, WithFill(4, 4), WithTopDown(true))
	require.NoError(t, p.Convert("a.png", "out/b.bmp"))

	bs, err := afero.ReadFile(fs, "out/b.bmp")
	require.NoError(t, err)
	assert.EqualValues(t, 4, int32(binary.LittleEndian.Uint32(bs[18:22])))
	assert.EqualValues(t, -4, int32(binary.LittleEndian.Uint32(bs[22:26])))
	assert.Len(t, bs, 54+4*4*3)
}

func TestConvertMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newTestPipeline(fs)

	err := p.Convert("nope.png", "")
	assert.Error(t, err)

	exists, _ := afero.Exists(fs, "nope.bmp")
	assert.False(t, exists)
}

func TestConvertUndecodable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "junk.png", []byte("not an image"), 0644))

	err := newTestPipeline(fs).Convert("junk.png", "")
	assert.Error(t, err)
}

func TestConvertOversizedSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "huge.png", headerOnlyPNG(40000, 40000), 0644))

	err := newTestPipeline(fs).Convert("huge.png", "")
	assert.ErrorIs(t, err, bitmap.ErrDimensionOverflow)

	exists, _ := afero.Exists(fs, "huge.bmp")
	assert.False(t, exists)
}

func TestConvertURL(t *testing.T) {
	data := testPNG(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pics/dog.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	p := newTestPipeline(fs, WithFetcher(NewFetcher(io.Discard, zap.NewNop())))

	require.NoError(t, p.Convert(srv.URL+"/pics/dog.png", ""))
	exists, err := afero.Exists(fs, "dog.bmp")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Error(t, p.Convert(srv.URL+"/missing.png", ""))
}
