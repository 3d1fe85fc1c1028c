package sink

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDirPut(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := NewFs(fs, zap.NewNop())

	err := d.Put("out/a.bmp", func(w io.Writer) error {
		_, err := w.Write([]byte("BM1234"))
		return err
	})
	require.NoError(t, err)

	bs, err := afero.ReadFile(fs, "out/a.bmp")
	require.NoError(t, err)
	assert.Equal(t, []byte("BM1234"), bs)

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirPutFailureLeavesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := NewFs(fs, zap.NewNop())
	boom := errors.New("boom")

	err := d.Put("b.bmp", func(w io.Writer) error {
		_, _ = w.Write([]byte("BM"))
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	exists, err := afero.Exists(fs, "b.bmp")
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDirPutReplacesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "c.bmp", []byte("old"), 0644))

	d := NewFs(fs, zap.NewNop())
	require.NoError(t, d.Put("c.bmp", func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	}))

	bs, err := afero.ReadFile(fs, "c.bmp")
	require.NoError(t, err)
	assert.Equal(t, "new", string(bs))
}

func TestNewDirMissing(t *testing.T) {
	_, err := NewDir(t.TempDir()+"/missing", zap.NewNop())
	assert.Error(t, err)
}
