package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

// ReadCleanedCSV loads a cleaned transaction table written by
// ExportCleaned. Parsing is strict: the header must match the export
// column order exactly and every cell must coerce, since this file is a
// pipeline artifact rather than external input.
func ReadCleanedCSV(path string) ([]domain.TransactionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("cleaned CSV").
				WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("open cleaned CSV", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(transactionHeaders)

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read cleaned CSV header", err).
			WithContext("path", path)
	}
	for i, want := range transactionHeaders {
		if header[i] != want {
			return nil, apperrors.NewParsingError("unexpected cleaned CSV header", nil).
				WithContext("path", path).
				WithContext("column", i).
				WithContext("want", want).
				WithContext("got", header[i])
		}
	}

	var records []domain.TransactionRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read cleaned CSV row", err).
				WithContext("path", path).
				WithContext("line", line)
		}

		record, err := rowToRecord(row)
		if err != nil {
			return nil, apperrors.NewParsingError("parse cleaned CSV row", err).
				WithContext("path", path).
				WithContext("line", line)
		}
		records = append(records, record)
	}

	return records, nil
}

func rowToRecord(row []string) (domain.TransactionRecord, error) {
	var r domain.TransactionRecord
	var err error

	r.Invoice = row[0]
	r.StockCode = row[1]
	r.Description = row[2]
	if r.Quantity, err = strconv.ParseInt(row[3], 10, 64); err != nil {
		return r, err
	}
	if r.InvoiceDate, err = time.Parse("2006-01-02 15:04:05", row[4]); err != nil {
		return r, err
	}
	if r.Price, err = strconv.ParseFloat(row[5], 64); err != nil {
		return r, err
	}
	if row[6] != "" {
		id, err := strconv.ParseInt(row[6], 10, 64)
		if err != nil {
			return r, err
		}
		r.CustomerID = &id
	}
	r.Country = row[7]
	if r.TotalAmount, err = strconv.ParseFloat(row[8], 64); err != nil {
		return r, err
	}
	if r.IsReturn, err = strconv.ParseBool(row[9]); err != nil {
		return r, err
	}
	if r.Year, err = strconv.Atoi(row[10]); err != nil {
		return r, err
	}
	if r.Month, err = strconv.Atoi(row[11]); err != nil {
		return r, err
	}
	if r.Day, err = strconv.Atoi(row[12]); err != nil {
		return r, err
	}
	if r.Hour, err = strconv.Atoi(row[13]); err != nil {
		return r, err
	}
	r.DayOfWeek = row[14]
	if r.InvoiceDateOnly, err = time.Parse("2006-01-02", row[15]); err != nil {
		return r, err
	}

	return r, nil
}
