package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cleaned.gob")
	dataset := &domain.CleanedDataset{
		Records:     cleanedFixture(),
		RunID:       "run-1",
		SourceFile:  "online_retail_II.xlsx",
		GeneratedAt: time.Date(2011, 12, 10, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, WriteSnapshot(dataset, path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, dataset.RunID, loaded.RunID)
	assert.Equal(t, dataset.SourceFile, loaded.SourceFile)
	require.Len(t, loaded.Records, 2)
	assert.Equal(t, dataset.Records, loaded.Records)
	require.True(t, loaded.Records[0].HasCustomer())
	assert.Equal(t, int64(17850), loaded.Records[0].CustomerIDValue())
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.gob"))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0644))

	_, err := LoadSnapshot(path)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
}
