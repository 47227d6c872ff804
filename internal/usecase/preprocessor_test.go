package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"CoinCast/internal/repository"
	applogger "CoinCast/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawFixture = `{"prices":[
	[1704067200000,42000.5],
	[1704070800000,42100],
	[1704074400000,41950.25],
	[1704078000123,42010]
]}`

func TestPreprocessorWritesOneRowPerPrice(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "processed", "prices.csv")
	store := repository.NewFileStore(filepath.Join(dir, "raw.json"), csvPath, filepath.Join(dir, "m.json"))
	require.NoError(t, store.WriteRaw(context.Background(), []byte(rawFixture)))

	n, err := NewPreprocessor(store, "bitcoin", applogger.Nop(), store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "timestamp,price", lines[0])
	assert.Equal(t, "2024-01-01 00:00:00.000,42000.5", lines[1])
	assert.Equal(t, "2024-01-01 03:00:00.123,42010", lines[4])
}

func TestPreprocessorKeepsSourceOrder(t *testing.T) {
	raw := &memRaw{b: []byte(`{"prices":[[3000,3],[1000,1],[2000,2]]}`)}
	sink := &memSeries{}
	second := &memSeries{}

	_, err := NewPreprocessor(raw, "bitcoin", applogger.Nop(), sink, second).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.points, 3)
	assert.Equal(t, []float64{3, 1, 2}, []float64{sink.points[0].Price, sink.points[1].Price, sink.points[2].Price})
	assert.True(t, sink.points[0].Timestamp.After(sink.points[1].Timestamp))
	assert.Equal(t, sink.points, second.points)
}

func TestPreprocessorRejectsMalformedPairs(t *testing.T) {
	raw := &memRaw{b: []byte(`{"prices":[[1000]]}`)}
	_, err := NewPreprocessor(raw, "bitcoin", applogger.Nop(), &memSeries{}).Run(context.Background())
	assert.Error(t, err)

	raw = &memRaw{b: []byte(`not json`)}
	_, err = NewPreprocessor(raw, "bitcoin", applogger.Nop(), &memSeries{}).Run(context.Background())
	assert.Error(t, err)
}
