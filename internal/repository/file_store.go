package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"CoinCast/internal/domain/models"
)

// TimeLayout is the processed timestamp column without a fraction. When any
// row carries sub-second precision the whole column is rendered at the
// finest one present, see columnLayout.
const TimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"timestamp", "price"}

// FileStore keeps each stage's output on local disk.
type FileStore struct {
	rawPath   string
	csvPath   string
	modelPath string
}

// NewFileStore creates a file store over the three stage paths.
func NewFileStore(rawPath, csvPath, modelPath string) *FileStore {
	return &FileStore{rawPath: rawPath, csvPath: csvPath, modelPath: modelPath}
}

func (s *FileStore) WriteRaw(_ context.Context, b []byte) error {
	return writeFileAtomic(s.rawPath, b)
}

func (s *FileStore) ReadRaw(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.rawPath)
	if err != nil {
		return nil, fmt.Errorf("read raw: %w", err)
	}
	return b, nil
}

// WriteSeries writes the processed CSV. The coin is implied by the path.
func (s *FileStore) WriteSeries(_ context.Context, _ string, points []models.PricePoint) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, points); err != nil {
		return err
	}
	return writeFileAtomic(s.csvPath, buf.Bytes())
}

// ReadSeries reads the processed CSV. A positive limit keeps the last limit rows.
func (s *FileStore) ReadSeries(_ context.Context, _ string, limit int) ([]models.PricePoint, error) {
	f, err := os.Open(s.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open series: %w", err)
	}
	defer f.Close()

	points, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.csvPath, err)
	}
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

func (s *FileStore) SaveModel(_ context.Context, m *models.Model) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return writeFileAtomic(s.modelPath, append(b, '\n'))
}

func (s *FileStore) LoadModel(_ context.Context) (*models.Model, error) {
	b, err := os.ReadFile(s.modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m models.Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.modelPath, err)
	}
	return &m, nil
}

// EncodeCSV writes the header then one row per point.
func EncodeCSV(w io.Writer, points []models.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	layout := columnLayout(points)
	for _, p := range points {
		rec := []string{
			p.Timestamp.UTC().Format(layout),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnLayout picks one fraction width for every row: none, milli, micro
// or nano seconds, whichever is the finest any row needs.
func columnLayout(points []models.PricePoint) string {
	digits := 0
	for _, p := range points {
		ns := p.Timestamp.Nanosecond()
		switch {
		case ns%int(time.Microsecond) != 0:
			return TimeLayout + ".000000000"
		case ns%int(time.Millisecond) != 0:
			digits = 6
		case ns != 0 && digits < 3:
			digits = 3
		}
	}
	switch digits {
	case 6:
		return TimeLayout + ".000000"
	case 3:
		return TimeLayout + ".000"
	}
	return TimeLayout
}

// DecodeCSV parses a processed CSV produced by EncodeCSV.
func DecodeCSV(r io.Reader) ([]models.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if header[0] != csvHeader[0] || header[1] != csvHeader[1] {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	var points []models.PricePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		ts, err := time.ParseInLocation(TimeLayout, rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		points = append(points, models.PricePoint{Timestamp: ts, Price: price})
	}
	return points, nil
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
