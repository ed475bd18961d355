package fileio

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDumpAndLoadWithCodecs(t *testing.T) {
	fs := NewLocalFs(afero.NewMemMapFs(), nil)
	data := []byte("hello\nworld\nhello\nworld\n")
	for _, path := range []string{"/out/plain.txt", "/out/a.txt.gz", "/out/b.txt.zst", "/out/c.txt.lz4"} {
		require.Nil(t, fs.Dump(path, data), path)
		loaded, err := fs.Load(path)
		require.Nil(t, err, path)
		require.Equal(t, data, loaded, path)
	}
	exists, err := fs.Exists("file:///out/plain.txt")
	require.Nil(t, err)
	require.True(t, exists)
	exists, err = fs.Exists("/nope")
	require.Nil(t, err)
	require.False(t, exists)
	_, err = fs.Load("/nope")
	require.NotNil(t, err)
}

func TestCodecFor(t *testing.T) {
	require.Nil(t, CodecFor("data.txt"))
	require.Equal(t, "gzip", CodecFor("data.txt.GZ").Name())
	require.Equal(t, "zstd", CodecFor("data.zst").Name())
	require.Equal(t, "lz4", CodecFor("data.lz4").Name())
}

func TestResolve(t *testing.T) {
	mem := afero.NewMemMapFs()
	fs := NewLocalFs(mem, nil)
	require.Nil(t, mem.MkdirAll("/data/nested", 0755))
	for _, path := range []string{"/data/part-00001", "/data/part-00000", "/data/_SUCCESS", "/data/.crc", "/data/nested/part-00002", "/other.txt"} {
		require.Nil(t, afero.WriteFile(mem, path, []byte("x"), 0644))
	}
	files, err := fs.Resolve("/data")
	require.Nil(t, err)
	require.Equal(t, []string{"/data/nested/part-00002", "/data/part-00000", "/data/part-00001"}, files)

	files, err = fs.Resolve("/data/part-*")
	require.Nil(t, err)
	require.Equal(t, []string{"/data/part-00000", "/data/part-00001"}, files)

	files, err = fs.Resolve("file:///other.txt")
	require.Nil(t, err)
	require.Equal(t, []string{"/other.txt"}, files)

	files, err = fs.Resolve("/missing/*")
	require.Nil(t, err)
	require.Empty(t, files)
}
