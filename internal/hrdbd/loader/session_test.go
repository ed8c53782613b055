package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/hrdb/internal/hrdbd/repository"
)

func setupTestSession(t *testing.T) *Session {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "hrdbd.db")

	repo, err := repository.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return New(repo, nil)
}

func writeHRDDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// buildBIOSImage lays out a two-byte little-endian pointer to offset at
// the start of the image, followed by header at offset, matching the
// layout internal/bios/dp's own tests exercise.
func buildBIOSImage(offset int, header []byte) []byte {
	size := offset + len(header) + 256
	data := make([]byte, size)
	data[0] = byte(offset)
	data[1] = byte(offset >> 8)
	copy(data[offset:], header)
	return data
}

func TestSessionLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeHRDDoc(t, dir, "root.hrd", `<database>
  <enum name="e">
    <value name="a" value="0"/>
    <value name="b" value="1"/>
  </enum>
  <domain name="d">
    <reg32 name="r" offset="0">
      <bitfield name="f" low="0" high="3"/>
    </reg32>
  </domain>
</database>`)

	sess := setupTestSession(t)
	ctx := context.Background()

	result, err := sess.Load(ctx, Request{HRDRoot: path})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.SessionID)
	assert.False(t, result.Summary.Estatus)
	assert.Equal(t, 1, result.Summary.EnumCount)
	assert.Equal(t, 1, result.Summary.DomainCount)
	assert.Empty(t, result.Summary.BIOSImageID)
	assert.Nil(t, result.BIOS)

	_, ok := result.DB.FindEnum("e")
	assert.True(t, ok)

	stored, err := sess.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Summary.EnumCount, stored.EnumCount)
	assert.Equal(t, path, stored.HRDRoot)
}

func TestSessionLoadWithBIOSImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hrdPath := writeHRDDoc(t, dir, "root.hrd", `<database>
  <domain name="d">
    <reg32 name="r" offset="0"/>
  </domain>
</database>`)

	header := []byte{0x42, 0x09, 0x04, 0x02, 0x01, 0x03, 0x04, 0x02, 0x05, 0x11, 0x22, 0x33, 0x44}
	imageData := buildBIOSImage(0x100, header)
	imagePath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(imagePath, imageData, 0o644))

	sess := setupTestSession(t)
	ctx := context.Background()

	result, err := sess.Load(ctx, Request{HRDRoot: hrdPath, BIOSImage: imagePath})
	require.NoError(t, err)
	require.NotNil(t, result.BIOS)
	require.NotNil(t, result.BIOS.Root.DPInfo)

	assert.True(t, result.Summary.BIOSValid)
	assert.NotEmpty(t, result.Summary.BIOSImageID)

	stored, err := sess.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Summary.BIOSImageID, stored.BIOSImageID)
}

func TestSessionLoadParseFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sess := setupTestSession(t)
	ctx := context.Background()

	_, err := sess.Load(ctx, Request{HRDRoot: filepath.Join(dir, "missing.hrd")})
	assert.Error(t, err)
}

func TestSessionListSessions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeHRDDoc(t, dir, "root.hrd", `<database>
  <domain name="d">
    <reg32 name="r" offset="0"/>
  </domain>
</database>`)

	sess := setupTestSession(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sess.Load(ctx, Request{HRDRoot: path})
		require.NoError(t, err)
	}

	sessions, err := sess.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
