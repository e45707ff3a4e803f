package importer

import (
	"context"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importhelper"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/parsers"
	apperrors "github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/errors"
)

// metadataEntry describes one repertoire file listed in the metadata file
type metadataEntry struct {
	Filename  string
	SubjectID string
	Labels    map[string]string
}

// readMetadataFile parses the repertoire metadata CSV. It must have a
// filename column; subject_id and any other columns become repertoire
// labels usable by downstream instructions.
func readMetadataFile(ctx context.Context, path string) ([]metadataEntry, error) {
	// Metadata files are plain CSV regardless of the dataset separator
	parser := parsers.NewDelimitedParser(&parsers.ParserConfig{
		Separator:      ',',
		SkipEmptyRows:  true,
		TrimWhitespace: true,
	})

	result, err := parser.Parse(ctx, path)
	if err != nil {
		return nil, apperrors.MetadataError(err, path)
	}

	hasFilename := false
	for _, col := range result.Columns {
		if col == "filename" {
			hasFilename = true
			break
		}
	}
	if !hasFilename {
		return nil, apperrors.MissingColumn("filename").WithDetails("metadata_file", path)
	}

	entries := make([]metadataEntry, 0, len(result.Records))
	for _, record := range result.Records {
		if record["filename"] == "" {
			continue
		}

		entry := metadataEntry{
			Filename:  record["filename"],
			SubjectID: record["subject_id"],
		}
		for col, value := range record {
			if col == "filename" || col == "subject_id" {
				continue
			}
			if entry.Labels == nil {
				entry.Labels = make(map[string]string)
			}
			entry.Labels[importhelper.NormalizeLabel(col)] = value
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
