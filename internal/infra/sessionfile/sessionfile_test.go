package sessionfile_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"telegram-session-manager/internal/infra/sessionfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		phone string
		want  string
	}{
		{name: "formatted", phone: "+82 10-1234-5678", want: "12345678"},
		{name: "plain", phone: "821012345678", want: "12345678"},
		{name: "e164", phone: "+821012345678", want: "12345678"},
		{name: "exactlyEight", phone: "87654321", want: "87654321"},
		{name: "short", phone: "+1 (234) 56", want: "123456"},
		{name: "noDigits", phone: "phone", want: ""},
		{name: "empty", phone: "", want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := sessionfile.Name(tc.phone)
			if got != tc.want {
				t.Fatalf("Name(%q) = %q, want %q", tc.phone, got, tc.want)
			}
			// Повторное применение ничего не меняет.
			if again := sessionfile.Name(got); again != got {
				t.Fatalf("Name is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payloads := [][]byte{
		{},
		{0x00},
		[]byte("plain text session"),
		bytes.Repeat([]byte{0xff, 0x00, 0x7f}, 1000),
	}
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)
	payloads = append(payloads, random)

	for i, payload := range payloads {
		src := filepath.Join(dir, "src.session")
		require.NoError(t, os.WriteFile(src, payload, 0o600))

		encoded, err := sessionfile.Encode(src)
		require.NoError(t, err)

		out := filepath.Join(dir, "restored", "out.session")
		require.NoError(t, sessionfile.Decode(encoded, out), "payload %d", i)

		restored, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, restored), "payload %d differs after round trip", i)
	}
}

func TestEncodeMissingFile(t *testing.T) {
	t.Parallel()

	_, err := sessionfile.Encode(filepath.Join(t.TempDir(), "absent.session"))
	assert.Error(t, err)
}

func TestDecodeInvalidInput(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "out.session")
	require.Error(t, sessionfile.Decode("%%% not base64 %%%", out))
	assert.NoFileExists(t, out)
}

func TestSaveString(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "telethon", "12345678.txt")
	require.NoError(t, sessionfile.SaveString("QUJD", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "QUJD", string(data))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.session")
	full := filepath.Join(dir, "full.session")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	require.NoError(t, os.WriteFile(full, []byte{1}, 0o600))

	assert.False(t, sessionfile.Validate(filepath.Join(dir, "missing.session")))
	assert.False(t, sessionfile.Validate(empty))
	assert.True(t, sessionfile.Validate(full))
	assert.True(t, sessionfile.Validate(dir))
}

func TestBackupFile(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "12345678.session")
	require.NoError(t, os.WriteFile(src, []byte("auth key bytes"), 0o640))
	mtime := time.Date(2023, time.January, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	now := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.Local)
	backup, err := sessionfile.BackupAt(src, now)
	require.NoError(t, err)
	assert.Equal(t, src+".backup_20240506_070809", backup)

	original, err := os.ReadFile(src)
	require.NoError(t, err)
	copied, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	info, err := os.Stat(backup)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestBackupSameSecondOverwrites(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "a.session")
	now := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.Local)

	require.NoError(t, os.WriteFile(src, []byte("v1"), 0o600))
	first, err := sessionfile.BackupAt(src, now)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("v2"), 0o600))
	second, err := sessionfile.BackupAt(src, now.Add(500*time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestBackupDirectory(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "12345678")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "files"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "td.session"), []byte("db"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "files", "photo"), []byte("img"), 0o600))

	backup, err := sessionfile.BackupAt(root, time.Now())
	require.NoError(t, err)

	assert.DirExists(t, root)
	data, err := os.ReadFile(filepath.Join(backup, "files", "photo"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
	data, err = os.ReadFile(filepath.Join(backup, "td.session"))
	require.NoError(t, err)
	assert.Equal(t, "db", string(data))
}

func TestBackupMissing(t *testing.T) {
	t.Parallel()

	_, err := sessionfile.Backup(filepath.Join(t.TempDir(), "none.session"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
