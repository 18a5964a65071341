package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lzmap/lzmap/pkg/cache"
	"github.com/lzmap/lzmap/pkg/classify"
	lzerrors "github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/preset"
)

var testRecords = []classify.Record{
	{Name: "db01", Cores: 16, MemoryMiB: 65536, RecommendedSizeLabel: "E8s_v3"},
	{Name: "app01", Cores: 4, MemoryMiB: 8192, RecommendedSizeLabel: "D4s_v3"},
	{Name: "util01", Cores: 1, MemoryMiB: 2048, RecommendedSizeLabel: "B1ms"},
}

func testOptions() Options {
	return Options{
		Records: testRecords,
		Preset:  preset.Default(),
		Formats: []string{FormatDrawio, FormatJSON},
		Legend:  true,
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, result.InputHash)
	assert.NotNil(t, result.Model)
	assert.Positive(t, result.Stats.NodeCount)
	assert.Positive(t, result.Stats.EdgeCount)
	assert.Len(t, result.Groups, 3) // app, db, management
	assert.NoError(t, result.Mismatch)

	assert.Contains(t, string(result.Artifacts[FormatDrawio]), "<mxfile")
	assert.Contains(t, string(result.Artifacts[FormatJSON]), `"nodes"`)
}

func TestExecuteIdempotent(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	a, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)
	b, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, a.InputHash, b.InputHash)
	for _, format := range []string{FormatDrawio, FormatJSON} {
		assert.Equal(t, a.Artifacts[format], b.Artifacts[format],
			"identical inputs must produce byte-identical %s documents", format)
	}
}

func TestExecuteHashTracksInputs(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	a, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)

	opts := testOptions()
	opts.Title = "different"
	b, err := runner.Execute(context.Background(), opts)
	require.NoError(t, err)

	assert.NotEqual(t, a.InputHash, b.InputHash)
}

func TestExecuteUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	first, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.Hits[FormatDrawio])

	second, err := runner.Execute(context.Background(), testOptions())
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.Hits[FormatDrawio])
	assert.Equal(t, first.Artifacts[FormatDrawio], second.Artifacts[FormatDrawio])

	// Refresh bypasses the cache but must regenerate the same bytes.
	opts := testOptions()
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.Hits[FormatDrawio])
	assert.Equal(t, first.Artifacts[FormatDrawio], third.Artifacts[FormatDrawio])
}

func TestExecuteRejectsBadOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := testOptions()
	opts.Formats = []string{"png"}
	_, err := runner.Execute(context.Background(), opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.Preset = preset.Preset{Name: "broken"}
	_, err = runner.Execute(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, lzerrors.ErrCodeConfiguration, lzerrors.GetCode(err))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Records: testRecords}
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, preset.DefaultName, opts.Preset.Name)
	assert.Equal(t, []string{FormatDrawio}, opts.Formats)
	assert.NotNil(t, opts.Logger)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat(FormatDrawio))
	assert.NoError(t, ValidateFormat(FormatJSON))
	assert.Error(t, ValidateFormat("svg"))
	assert.Error(t, ValidateFormats([]string{FormatDrawio, "pdf"}))
}
