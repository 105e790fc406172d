package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin arm64", "darwin", "arm64", "invalsi_Darwin_all.tar.gz", false},
		{"linux amd64", "linux", "amd64", "invalsi_Linux_x86_64.tar.gz", false},
		{"linux 386", "linux", "386", "invalsi_Linux_i386.tar.gz", false},
		{"windows amd64", "windows", "amd64", "invalsi_Windows_x86_64.zip", false},
		{"windows arm64", "windows", "arm64", "invalsi_Windows_arm64.zip", false},
		{"unsupported os", "plan9", "amd64", "", true},
		{"unsupported arch", "linux", "riscv64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "v1.2.0", Canonical("1.2"))
	assert.Equal(t, "v1.2.3", Canonical(" v1.2.3 "))
	assert.Equal(t, "v1.0.0-rc.1", Canonical("v1.0.0-rc.1"))
	assert.Equal(t, "", Canonical("latest"))
	assert.Equal(t, "", Canonical(""))
}

func TestParseChecksums(t *testing.T) {
	input := "ABC123  invalsi_Darwin_all.tar.gz\n\nmalformed line here\ndef456 *invalsi_Linux_x86_64.tar.gz\n"
	got := parseChecksums([]byte(input))
	assert.Equal(t, map[string]string{
		"invalsi_Darwin_all.tar.gz":   "abc123",
		"invalsi_Linux_x86_64.tar.gz": "def456",
	}, got)
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("payload")
	require.NoError(t, verifyChecksum(data, strings.ToUpper(sha256Hex(data))))
	assert.ErrorIs(t, verifyChecksum(data, zeroHash), ErrChecksum)
}

func TestExtractBinary(t *testing.T) {
	content := []byte("#!/bin/sh\necho invalsi")

	t.Run("tar.gz", func(t *testing.T) {
		got, err := extractBinary(buildTarGz(t, "dist/invalsi", content), "invalsi_Linux_x86_64.tar.gz")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("zip", func(t *testing.T) {
		got, err := extractBinary(buildZip(t, "invalsi.exe", content), "invalsi_Windows_x86_64.zip")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := extractBinary(buildTarGz(t, "README.md", content), "invalsi_Linux_x86_64.tar.gz")
		assert.ErrorIs(t, err, errBinaryMissing)
	})
}

func TestReplaceFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "invalsi")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	require.NoError(t, replaceFile(target, []byte("new-binary")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-binary"), got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

// releaseServer serves a latest release tag plus the given assets.
func releaseServer(t *testing.T, tag string, assets map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/VitoPalumboPodcast/Invalsi/releases/latest" {
			_, _ = fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
			return
		}
		prefix := "/VitoPalumboPodcast/Invalsi/releases/download/" + tag + "/"
		if data, ok := assets[strings.TrimPrefix(r.URL.Path, prefix)]; ok && strings.HasPrefix(r.URL.Path, prefix) {
			_, _ = w.Write(data)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheck(t *testing.T) {
	srv := releaseServer(t, "v1.4.0", nil)
	c := NewChecker(WithBaseURL(srv.URL), WithLogger(quietLogger()))

	res, err := c.Check(context.Background(), "1.3.9")
	require.NoError(t, err)
	assert.True(t, res.UpdateAvailable)
	assert.Equal(t, "v1.4.0", res.LatestVersion)
	assert.Equal(t, "https://example.com/v1.4.0", res.ReleaseURL)

	res, err = c.Check(context.Background(), "v1.4.0")
	require.NoError(t, err)
	assert.False(t, res.UpdateAvailable)

	_, err = c.Check(context.Background(), DevVersion)
	assert.ErrorIs(t, err, ErrDevBuild)

	_, err = c.Check(context.Background(), "nightly")
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestUpdate(t *testing.T) {
	asset, err := assetName()
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	content := []byte("new-invalsi-binary")
	var archive []byte
	if strings.HasSuffix(asset, ".zip") {
		archive = buildZip(t, "invalsi.exe", content)
	} else {
		archive = buildTarGz(t, "invalsi", content)
	}
	checksums := []byte(fmt.Sprintf("%s  %s\n", sha256Hex(archive), asset))

	newChecker := func(srv *httptest.Server, execPath string) *Checker {
		return NewChecker(
			WithBaseURL(srv.URL),
			WithDownloadBaseURL(srv.URL),
			WithLogger(quietLogger()),
			withExecPath(func() (string, error) { return execPath, nil }),
		)
	}

	t.Run("happy path", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "invalsi")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		srv := releaseServer(t, "v2.0.0", map[string][]byte{asset: archive, checksumsFile: checksums})

		var stages []Stage
		err := newChecker(srv, execPath).Update(context.Background(), "v1.0.0", "", func(p Progress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, []Stage{StageCheck, StageDownload, StageVerify, StageExtract, StageApply, StageDone}, stages)
	})

	t.Run("explicit target skips the check", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "invalsi")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		srv := releaseServer(t, "v1.5.0", map[string][]byte{asset: archive, checksumsFile: checksums})

		var stages []Stage
		err := newChecker(srv, execPath).Update(context.Background(), "v2.0.0", "v1.5.0", func(p Progress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)
		assert.NotContains(t, stages, StageCheck)
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), DevVersion, "", nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		srv := releaseServer(t, "v1.0.0", nil)
		err := newChecker(srv, "").Update(context.Background(), "v1.0.0", "", nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		bad := []byte(fmt.Sprintf("%s  %s\n", zeroHash, asset))
		srv := releaseServer(t, "v2.0.0", map[string][]byte{asset: archive, checksumsFile: bad})
		err := newChecker(srv, "").Update(context.Background(), "v1.0.0", "", nil)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("download failure", func(t *testing.T) {
		srv := releaseServer(t, "v2.0.0", nil)
		err := newChecker(srv, "").Update(context.Background(), "v1.0.0", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Size:     int64(len(content)),
		Mode:     0o755,
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
