package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CoinCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "raw", "prices.json"),
		filepath.Join(dir, "processed", "prices.csv"),
		filepath.Join(dir, "models", "model.json"),
	), dir
}

func TestEncodeCSVLayout(t *testing.T) {
	points := []models.PricePoint{
		{Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Price: 61000.5},
		{Timestamp: time.Date(2024, 3, 1, 13, 0, 0, 250*int(time.Millisecond), time.UTC), Price: 61010},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, points))

	want := "timestamp,price\n" +
		"2024-03-01 12:00:00.000,61000.5\n" +
		"2024-03-01 13:00:00.250,61010\n"
	assert.Equal(t, want, buf.String())
}

func TestEncodeCSVUniformFraction(t *testing.T) {
	base := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	whole := []models.PricePoint{{Timestamp: base, Price: 1}, {Timestamp: base.Add(time.Hour), Price: 2}}
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, whole))
	assert.Equal(t, "timestamp,price\n2023-11-14 22:13:20,1\n2023-11-14 23:13:20,2\n", buf.String())

	mixed := []models.PricePoint{
		{Timestamp: base.Add(123 * time.Millisecond), Price: 1},
		{Timestamp: base.Add(120 * time.Millisecond), Price: 2},
		{Timestamp: base, Price: 3},
	}
	buf.Reset()
	require.NoError(t, EncodeCSV(&buf, mixed))
	assert.Equal(t, "timestamp,price\n"+
		"2023-11-14 22:13:20.123,1\n"+
		"2023-11-14 22:13:20.120,2\n"+
		"2023-11-14 22:13:20.000,3\n", buf.String())

	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, mixed, got)

	micro := []models.PricePoint{{Timestamp: base.Add(1500 * time.Microsecond), Price: 1}, {Timestamp: base, Price: 2}}
	buf.Reset()
	require.NoError(t, EncodeCSV(&buf, micro))
	assert.Contains(t, buf.String(), "22:13:20.001500,1")
	assert.Contains(t, buf.String(), "22:13:20.000000,2")
}

func TestSeriesRoundTripPreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []models.PricePoint{
		{Timestamp: base.Add(2 * time.Hour), Price: 3},
		{Timestamp: base, Price: 1},
		{Timestamp: base.Add(time.Hour + 123*time.Millisecond), Price: 2},
	}
	require.NoError(t, s.WriteSeries(ctx, "bitcoin", points))

	got, err := s.ReadSeries(ctx, "bitcoin", 0)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	tail, err := s.ReadSeries(ctx, "bitcoin", 2)
	require.NoError(t, err)
	assert.Equal(t, points[1:], tail)
}

func TestDecodeCSVRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"header":    "ts,value\n",
		"timestamp": "timestamp,price\nyesterday,1\n",
		"price":     "timestamp,price\n2024-01-01 00:00:00,abc\n",
		"columns":   "timestamp,price\n2024-01-01 00:00:00\n",
	}
	for name, in := range cases {
		_, err := DecodeCSV(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}

func TestModelRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	m := &models.Model{
		Version:   models.ModelVersion,
		Feature:   models.FeatureRowIndex,
		Slope:     2,
		Intercept: 5,
		OriginMs:  1_700_000_000_000,
		StepMs:    3_600_000,
		Samples:   10,
		R2:        1,
		Coin:      "bitcoin",
		Currency:  "usd",
		TrainedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveModel(ctx, m))

	got, err := s.LoadModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestLoadModelRejectsUnknownVersion(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.modelPath), 0o755))
	require.NoError(t, os.WriteFile(s.modelPath, []byte(`{"version":9,"feature":"row_index"}`), 0o644))

	_, err := s.LoadModel(context.Background())
	assert.ErrorIs(t, err, models.ErrUnsupportedModelVersion)
}

func TestLoadModelMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.LoadModel(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRawIsAtomic(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRaw(ctx, []byte(`{"prices":[]}`)))
	require.NoError(t, s.WriteRaw(ctx, []byte(`{"prices":[[1,2]]}`)))

	b, err := s.ReadRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"prices":[[1,2]]}`, string(b))

	entries, err := os.ReadDir(filepath.Dir(s.rawPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
