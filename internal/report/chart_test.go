package report

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/fingercount/internal/store"
)

func TestWriteCountChart(t *testing.T) {
	totals := []store.FrameTotal{
		{FrameIndex: 0, Raw: 2, Smoothed: 2},
		{FrameIndex: 1, Raw: 3, Smoothed: 2},
		{FrameIndex: 2, Raw: 3, Smoothed: 3},
		{FrameIndex: 3, Raw: 7, Smoothed: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCountChart(&buf, totals, "Session s1"))

	img, err := png.Decode(&buf)
	require.NoError(t, err, "output should be a valid PNG")

	b := img.Bounds()
	assert.Greater(t, b.Dx(), b.Dy(), "chart should be landscape")
}

func TestWriteCountChart_SingleFrame(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCountChart(&buf, []store.FrameTotal{{FrameIndex: 0, Raw: 5, Smoothed: 5}}, "")
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestWriteCountChart_NoData(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCountChart(&buf, nil, "empty")
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCountChart_WriteError(t *testing.T) {
	err := WriteCountChart(failingWriter{}, []store.FrameTotal{{Raw: 1, Smoothed: 1}}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
