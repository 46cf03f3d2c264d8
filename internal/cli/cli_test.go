package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ncd/blobstore"
	"github.com/hupe1980/ncd/compressor"
	"github.com/hupe1980/ncd/internal/lock"
	"github.com/hupe1980/ncd/matrix"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append(args, "--log-format", "text"))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func loadOutput(t *testing.T, path string) matrix.Matrix {
	t.Helper()
	m, err := matrix.NewStore(blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path)).Load(context.Background())
	require.NoError(t, err)
	return m
}

var abc = map[string]string{"A": "aaaa", "B": "aaaa", "C": "zzzzzzzzzz"}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Location
		wantErr bool
	}{
		{name: "local", in: "data/distances.json", want: Location{Scheme: SchemeLocal, Path: filepath.Clean("data/distances.json")}},
		{name: "s3", in: "s3://bucket/a/b/", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: "a/b"}},
		{name: "s3 bucket only", in: "s3://bucket", want: Location{Scheme: SchemeS3, Bucket: "bucket"}},
		{name: "minio", in: "minio://localhost:9000/bucket/corpus", want: Location{Scheme: SchemeMinIO, Endpoint: "localhost:9000", Bucket: "bucket", Path: "corpus"}},
		{name: "minio no prefix", in: "minio://localhost:9000/bucket", want: Location{Scheme: SchemeMinIO, Endpoint: "localhost:9000", Bucket: "bucket"}},
		{name: "s3 missing bucket", in: "s3://", wantErr: true},
		{name: "minio missing bucket", in: "minio://localhost:9000", wantErr: true},
		{name: "unknown scheme", in: "gs://bucket/x", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_Split(t *testing.T) {
	loc, err := ParseLocation("s3://bucket/results/ncd/distances.json")
	require.NoError(t, err)
	parent, name := loc.Split()
	assert.Equal(t, "distances.json", name)
	assert.Equal(t, "results/ncd", parent.Path)
	assert.Equal(t, "s3://bucket/results/ncd", parent.String())

	loc, err = ParseLocation("s3://bucket/distances.json")
	require.NoError(t, err)
	parent, name = loc.Split()
	assert.Equal(t, "distances.json", name)
	assert.Empty(t, parent.Path)

	local, err := ParseLocation(filepath.Join("out", "distances.json"))
	require.NoError(t, err)
	parent, name = local.Split()
	assert.Equal(t, "distances.json", name)
	assert.Equal(t, "out", parent.Path)
}

func TestLocation_SameContainer(t *testing.T) {
	dir := t.TempDir()
	a, _ := ParseLocation(dir)
	b, _ := ParseLocation(dir + string(filepath.Separator))
	assert.True(t, a.SameContainer(b))

	c, _ := ParseLocation(t.TempDir())
	assert.False(t, a.SameContainer(c))

	s1, _ := ParseLocation("s3://bucket/x")
	s2, _ := ParseLocation("minio://host/bucket/x")
	assert.False(t, s1.SameContainer(s2))
}

func TestConfig_CompressorConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cc, err := cfg.CompressorConfig()
	require.NoError(t, err)
	assert.Equal(t, compressor.DefaultConfig(), cc)

	cfg.Compressor = "zstd"
	cfg.Delta = 3
	cc, err = cfg.CompressorConfig()
	require.NoError(t, err)
	assert.Equal(t, "zstd+delta=3", cc.String())

	cfg.Compressor = "lzma"
	cfg.Delta = 0
	cc, err = cfg.CompressorConfig()
	require.NoError(t, err)
	assert.Zero(t, cc.DeltaDistance)

	cfg.Compressor = "brotli"
	_, err = cfg.CompressorConfig()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "workers", mutate: func(c *Config) { c.Workers = 0 }},
		{name: "save every", mutate: func(c *Config) { c.SaveEvery = 0 }},
		{name: "save interval", mutate: func(c *Config) { c.SaveInterval = -time.Second }},
		{name: "io limit", mutate: func(c *Config) { c.IOLimit = -1 }},
		{name: "delta", mutate: func(c *Config) { c.Delta = compressor.MaxDeltaDistance + 1 }},
	}
	require.NoError(t, NewDefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInitViper_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ncd.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 3\nsave_every: 7\nminio:\n  access_key: file-key\n"), 0o644))
	t.Setenv("NCD_SAVE_EVERY", "9")
	t.Setenv("NCD_MINIO_SECRET_KEY", "env-secret")

	v, err := InitViper(file)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers, "file over default")
	assert.Equal(t, 9, cfg.SaveEvery, "env over file")
	assert.Equal(t, "file-key", cfg.MinIO.AccessKey)
	assert.Equal(t, "env-secret", cfg.MinIO.SecretKey)
	assert.Equal(t, "distances.json", cfg.Output, "default")
}

func TestInitViper_MissingFile(t *testing.T) {
	_, err := InitViper(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{LogFormatPretty, LogFormatJSON, LogFormatText} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := newLogger(&buf, format, false)
			require.NoError(t, err)
			l.Info("hello", "key", "value")
			l.Debug("hidden")
			assert.Contains(t, buf.String(), "hello")
			assert.NotContains(t, buf.String(), "hidden")
		})
	}

	var buf bytes.Buffer
	l, err := newLogger(&buf, LogFormatJSON, true)
	require.NoError(t, err)
	l.Debug("visible")
	assert.Contains(t, buf.String(), `"msg":"visible"`)

	_, err = newLogger(&buf, "xml", false)
	require.Error(t, err)
}

func TestBuild_ReferenceCorpus(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")

	stdout, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 computed")
	assert.Contains(t, stdout, "0 left to process")

	m := loadOutput(t, out)
	require.Equal(t, []string{"A", "B", "C"}, m.Keys())
	assert.Less(t, m["A"]["B"], m["A"]["C"])
	assert.Less(t, m["A"]["B"], m["B"]["C"])
	assert.FileExists(t, out+matrix.MetaSuffix)

	stdout, err = execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 computed")
}

func TestBuild_OutputInsideCorpus(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(dir, "distances.json")

	for range 2 {
		_, err := execute(t, "build", dir, "-o", out, "-c", "deflate", "-w", "2", "--cache-size", "1048576")
		require.NoError(t, err)
	}

	m := loadOutput(t, out)
	assert.Equal(t, []string{"A", "B", "C"}, m.Keys())
	for _, row := range m {
		assert.Len(t, row, 3)
	}
}

func TestBuild_CompressorMismatch(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")

	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)

	_, err = execute(t, "build", dir, "-o", out, "-c", "lz4")
	require.ErrorIs(t, err, matrix.ErrConfigMismatch)
}

func TestBuild_CorruptOutput(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")
	require.NoError(t, os.WriteFile(out, []byte(`{"A": {"A": "x"}}`), 0o644))

	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.ErrorIs(t, err, matrix.ErrCorrupt)
}

func TestBuild_Locked(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")

	l, err := lock.Acquire(out + lockSuffix)
	require.NoError(t, err)
	defer func() { _ = l.Release() }()

	_, err = execute(t, "build", dir, "-o", out)
	require.ErrorIs(t, err, lock.ErrLocked)
	assert.NoFileExists(t, out)
}

func TestBuild_RemovesStaleTemp(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")
	stale := out + ".tmp-deadbeef"
	require.NoError(t, os.WriteFile(stale, []byte("{"), 0o644))

	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestBuild_Arguments(t *testing.T) {
	_, err := execute(t, "build")
	require.Error(t, err)

	_, err = execute(t, "build", filepath.Join(t.TempDir(), "missing"), "-o", filepath.Join(t.TempDir(), "d.json"))
	require.Error(t, err)

	dir := writeCorpus(t, abc)
	_, err = execute(t, "build", dir, "-w", "0")
	require.Error(t, err)

	_, err = execute(t, "build", dir, "--codec", "xml", "-o", filepath.Join(t.TempDir(), "d.json"))
	require.Error(t, err)
}

func TestBuild_MetricsListener(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")

	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Len(t, loadOutput(t, out), 3)
}

func TestCheck(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": strings.Repeat("ACGT", 256)})

	stdout, err := execute(t, "check", filepath.Join(dir, "a.txt"), "-c", "zstd")
	require.NoError(t, err)
	assert.Contains(t, stdout, "compressor: zstd")
	assert.Contains(t, stdout, "SELF-DISTANCE")
	assert.Contains(t, stdout, "1024")

	stdout, err = execute(t, "check", filepath.Join(dir, "a.txt"), "-c", "bzip2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "compressor: bzip2")

	_, err = execute(t, "check", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestNearest(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")
	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)

	stdout, err := execute(t, "nearest", "A", "-o", out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "C"), "C is farthest from A")

	stdout, err = execute(t, "nearest", "A", "-o", out, "-n", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 1)

	_, err = execute(t, "nearest", "Z", "-o", out)
	require.Error(t, err)
}

func TestSymmetry(t *testing.T) {
	dir := writeCorpus(t, abc)
	out := filepath.Join(t.TempDir(), "distances.json")
	_, err := execute(t, "build", dir, "-o", out, "-c", "zstd")
	require.NoError(t, err)

	stdout, err := execute(t, "symmetry", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "rows: 3")
	assert.Contains(t, stdout, "pairs: 3")
	assert.Contains(t, stdout, "max delta:")

	stdout, err = execute(t, "symmetry", "-o", filepath.Join(t.TempDir(), "empty.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "pairs: 0")
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version: "+Version)
}
