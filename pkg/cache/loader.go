// pkg/cache/loader.go
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/connector"
	"github.com/David-Botos/chembl-prep/pkg/converter"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

// Loader returns cached tables from disk or fetches and caches them
type Loader struct {
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewLoader creates a new Loader instance
func NewLoader(conv *converter.TypeConverter, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if conv == nil {
		conv = converter.NewTypeConverter(logger)
	}
	return &Loader{
		converter: conv,
		logger:    logger.Named("cache"),
	}, nil
}

// CachePath returns the cache file path for a dataset of a target
func CachePath(storagePath, targetName, datasetName string) string {
	return filepath.Join(storagePath, fmt.Sprintf("%s_%s.csv", targetName, datasetName))
}

// LoadOrFetch returns the cached table for (targetName, datasetName) if the
// cache file exists. Otherwise it runs the query, materializes the records
// and, if save is set, writes the cache file. Fetched tables are decoded from
// the same CSV bytes that are cached, so both paths produce identical cells.
func (l *Loader) LoadOrFetch(
	ctx context.Context,
	query connector.Query,
	datasetName, storagePath, targetName string,
	save bool,
) (*model.Table, error) {
	path := CachePath(storagePath, targetName, datasetName)

	table, err := l.load(path)
	if err == nil {
		meta := converter.Describe(datasetName, table)
		l.logger.Info("Loaded dataset from cache",
			zap.String("dataset", datasetName),
			zap.String("path", path),
			zap.Int("rows", table.NumRows()),
			zap.Strings("columns", meta.ColumnNames()))
		return table, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if query == nil {
		return nil, &model.FetchError{Dataset: datasetName, Err: errors.New("no query supplied and no cache file present")}
	}

	l.logger.Info("Cache miss, fetching dataset",
		zap.String("dataset", datasetName),
		zap.String("path", path))

	records, err := query.Fetch(ctx)
	if err != nil {
		return nil, &model.FetchError{Dataset: datasetName, Err: err}
	}

	var buf bytes.Buffer
	if err := l.converter.EncodeCSV(&buf, l.converter.FromRecords(records)); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", datasetName, err)
	}
	encoded := buf.Bytes()

	if save {
		if err := writeAtomic(storagePath, path, encoded); err != nil {
			return nil, err
		}
		l.logger.Info("Cached dataset",
			zap.String("dataset", datasetName),
			zap.String("path", path),
			zap.Int("bytes", len(encoded)))
	}

	table, err = l.converter.DecodeCSV(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	l.logger.Info("Fetched dataset",
		zap.String("dataset", datasetName),
		zap.Int("records", records.Len()),
		zap.Int("rows", table.NumRows()))
	return table, nil
}

// Invalidate removes the cache file for a dataset. A missing file is not an error.
func (l *Loader) Invalidate(datasetName, storagePath, targetName string) error {
	path := CachePath(storagePath, targetName, datasetName)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &model.StorageError{Path: path, Op: "remove", Err: err}
	}
	l.logger.Info("Invalidated cache entry", zap.String("path", path))
	return nil
}

// Export writes t to path with the cache codec, creating parent directories
func (l *Loader) Export(t *model.Table, path string) error {
	if t == nil {
		return model.ErrNilTable
	}
	var buf bytes.Buffer
	if err := l.converter.EncodeCSV(&buf, t); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if err := writeAtomic(filepath.Dir(path), path, buf.Bytes()); err != nil {
		return err
	}
	l.logger.Info("Exported table",
		zap.String("path", path),
		zap.Int("rows", t.NumRows()))
	return nil
}

// load decodes a cache file. os.ErrNotExist is returned unwrapped so the
// caller can fall through to the fetch path.
func (l *Loader) load(path string) (*model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, &model.StorageError{Path: path, Op: "read", Err: err}
	}
	return l.converter.DecodeCSV(bytes.NewReader(data))
}

// writeAtomic writes data to a temp file in dir and renames it into place
func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &model.StorageError{Path: dir, Op: "mkdir", Err: err}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &model.StorageError{Path: tmp, Op: "write", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &model.StorageError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
