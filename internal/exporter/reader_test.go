package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "retailetl/internal/errors"
	"retailetl/internal/shared/testutil"
)

// Export then reload must reproduce the records exactly.
func TestCleanedCSVRoundTrip(t *testing.T) {
	logger, _ := testutil.NewCaptureLogger()
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	records := cleanedFixture()

	require.NoError(t, NewTransactionExporter(logger).ExportCleaned(records, path))

	loaded, err := ReadCleanedCSV(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestReadCleanedCSVMissing(t *testing.T) {
	_, err := ReadCleanedCSV(filepath.Join(t.TempDir(), "absent.csv"))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestReadCleanedCSVRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "invoice,stock_code,description,quantity,invoice_date,price,customer,country,total_amount,is_return,year,month,day,hour,day_of_week,invoice_date_only\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadCleanedCSV(path)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestReadCleanedCSVRejectsBadCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	content := strings.Join(transactionHeaders, ",") + "\n" +
		"536365,85123A,MUG,many,2010-06-04 14:45:00,2.55,17850,United Kingdom,15.3,false,2010,6,4,14,Friday,2010-06-04\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadCleanedCSV(path)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}
