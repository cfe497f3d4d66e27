// AngelaMos | 2026
// generator_test.go

package qrcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/config"
)

func TestFileGeneratorWritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "qr")
	gen, err := NewFileGenerator(config.QRConfig{
		Dir:     dir,
		BaseURL: "https://example.test/dashboard/",
	})
	require.NoError(t, err)

	asset, err := gen.Generate(context.Background(), KindThread, "abc")
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/dashboard/thread/abc", asset.Link)
	assert.Equal(t, filepath.Join(dir, "thread-abc.png"), asset.Path)

	info, err := os.Stat(asset.Path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFileGeneratorHonorsCancelledContext(t *testing.T) {
	gen, err := NewFileGenerator(config.QRConfig{Dir: t.TempDir(), BaseURL: "https://x"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gen.Generate(ctx, KindBead, "id")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLink(t *testing.T) {
	assert.Equal(t, "https://x/charms/42", Link("https://x", KindBead, "42"))
}

func TestFileGeneratorPing(t *testing.T) {
	dir := t.TempDir()
	gen, err := NewFileGenerator(config.QRConfig{Dir: dir, BaseURL: "https://x"})
	require.NoError(t, err)

	require.NoError(t, gen.Ping(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, gen.Ping(context.Background()))
}
