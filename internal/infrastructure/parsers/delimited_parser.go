package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/errors"
)

// DelimitedParser parses delimited text tables (CSV and friends) with a
// configurable separator.
type DelimitedParser struct {
	config *ParserConfig
}

// NewDelimitedParser creates a new delimited-table parser
func NewDelimitedParser(config *ParserConfig) *DelimitedParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &DelimitedParser{
		config: config,
	}
}

// Parse reads and parses a delimited file from disk
func (p *DelimitedParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Check file size if limit is set
	if p.config.MaxFileSize > 0 {
		stat, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if stat.Size() > p.config.MaxFileSize {
			return nil, apperrors.FileTooLarge(stat.Size(), p.config.MaxFileSize)
		}
	}

	return p.ParseStream(ctx, file)
}

// ParseStream reads and parses delimited data from an io.Reader
func (p *DelimitedParser) ParseStream(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	csvReader := csv.NewReader(reader)
	if p.config.Separator != 0 {
		csvReader.Comma = p.config.Separator
	}
	csvReader.TrimLeadingSpace = p.config.TrimWhitespace
	csvReader.FieldsPerRecord = -1 // Allow variable number of fields per record

	// Read header row
	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if p.config.TrimWhitespace {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	var records []Record
	totalRows := 0
	skippedRows := 0

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows but continue parsing
			totalRows++
			skippedRows++
			continue
		}

		totalRows++

		if p.config.SkipEmptyRows && isEmptyRow(row) {
			skippedRows++
			continue
		}

		record := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				value := row[i]
				if p.config.TrimWhitespace {
					value = strings.TrimSpace(value)
				}
				record[col] = value
			} else {
				// Short rows get empty values for the missing columns
				record[col] = ""
			}
		}

		records = append(records, record)
	}

	return &ParseResult{
		Records:     records,
		TotalRows:   totalRows,
		SkippedRows: skippedRows,
		Columns:     header,
		Format:      "delimited",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *DelimitedParser) SupportedFormats() []string {
	return []string{".csv", ".tsv", ".txt"}
}

// isEmptyRow checks if a row contains only empty strings
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
