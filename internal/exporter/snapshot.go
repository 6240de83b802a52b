package exporter

import (
	"encoding/gob"
	"os"
	"path/filepath"

	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

// WriteSnapshot persists the full cleaned dataset in binary form. The
// snapshot is the canonical handoff to feature engineering; reloading it
// restores the exact records without re-reading the workbook.
func WriteSnapshot(dataset *domain.CleanedDataset, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create snapshot directory", err).
			WithContext("path", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create snapshot file", err).
			WithContext("path", path)
	}

	if err := gob.NewEncoder(file).Encode(dataset); err != nil {
		file.Close()
		return apperrors.NewStorageError("encode snapshot", err).
			WithContext("path", path)
	}
	return file.Close()
}

// LoadSnapshot reads a dataset snapshot written by WriteSnapshot.
func LoadSnapshot(path string) (*domain.CleanedDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("snapshot").
				WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("open snapshot", err).
			WithContext("path", path)
	}
	defer file.Close()

	var dataset domain.CleanedDataset
	if err := gob.NewDecoder(file).Decode(&dataset); err != nil {
		return nil, apperrors.NewStorageError("decode snapshot", err).
			WithContext("path", path)
	}
	return &dataset, nil
}
