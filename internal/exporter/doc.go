// Package exporter persists pipeline outputs.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and an optional UTF-8 BOM for Excel compatibility.
//
// TransactionExporter: Writes the cleaned transaction table to CSV and
// round-trips the full dataset through a binary snapshot, so downstream
// stages can reload it without re-reading the workbook.
//
// FeatureExporter: Writes the engineered customer feature table to CSV.
package exporter
