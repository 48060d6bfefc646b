// Package dataset reads score records produced by feature extraction.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/pkg/logger"
)

// Format is an input file format.
type Format string

// Supported formats.
const (
	FormatJSONL   Format = "jsonl"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

const (
	statusFailed     = "failed"
	parquetBatchSize = 128
	maxLineBytes     = 16 << 20
)

// DetectFormat maps a file extension to its format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	_, err := DetectFormat(path)
	return err == nil
}

// Result holds loaded records and the count of skipped ones.
type Result struct {
	Records []record.Score
	// Skipped counts records whose extraction failed.
	Skipped int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// Loader reads records from files.
type Loader struct {
	logger logger.Logger
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll reads every path and concatenates the results in path order.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (Result, error) {
	var out Result
	for _, p := range paths {
		res, err := l.Load(ctx, p)
		if err != nil {
			return out, err
		}
		out.Records = append(out.Records, res.Records...)
		out.Skipped += res.Skipped
	}
	return out, nil
}

// Load reads one file. Records with a failed extraction status are skipped,
// and a missing id defaults to file_path.
func (l *Loader) Load(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	format, err := DetectFormat(path)
	if err != nil {
		return Result{}, err
	}

	var raw []record.Score
	switch format {
	case FormatJSONL:
		raw, err = loadJSON(ctx, path)
	case FormatYAML:
		raw, err = loadYAML(path)
	case FormatParquet:
		raw, err = loadParquet(ctx, path)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Records: make([]record.Score, 0, len(raw))}
	for i := range raw {
		rec := raw[i]
		if strings.EqualFold(strings.TrimSpace(rec.ExtractionStatus), statusFailed) {
			res.Skipped++
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = strings.TrimSpace(rec.FilePath)
		}
		res.Records = append(res.Records, rec)
	}

	if l.logger != nil {
		l.logger.Debug(ctx, "dataset loaded",
			logger.String("path", path),
			logger.String("format", string(format)),
			logger.Int("records", len(res.Records)),
			logger.Int("skipped", res.Skipped),
		)
	}
	return res, nil
}

// loadJSON reads a JSON array or JSON lines.
func loadJSON(ctx context.Context, path string) ([]record.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []record.Score
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, path, err)
		}
		return recs, nil
	}

	var recs []record.Score
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled: %w", err)
			}
		}
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec record.Score
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrMalformedRecord, path, line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return recs, nil
}

func loadYAML(path string) ([]record.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var recs []record.Score
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, path, err)
	}
	return recs, nil
}

func loadParquet(ctx context.Context, path string) ([]record.Score, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[record.Score](pf)
	defer reader.Close()

	recs := make([]record.Score, 0, pf.NumRows())
	for {
		rows := make([]record.Score, parquetBatchSize)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		n, err := reader.Read(rows)
		recs = append(recs, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return recs, nil
}
