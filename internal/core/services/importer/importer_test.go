package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
	apperrors "github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/errors"
)

const igorFile = `seq_index,nt_CDR3,anchors_found,is_inframe
0,TGTGCCAGCAGTTTC,1,1
1,ATGAAATAA,1,1
2,TGTGCCAGC,0,1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestService_ImportFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "igor.csv", igorFile)

	svc := NewService(nil)
	table, err := svc.ImportFile(context.Background(), path, DefaultParams())
	require.NoError(t, err)

	// Row 1 contains a stop codon and row 2 has no anchors; only the
	// first row survives the default policy.
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, "0", row[domain.FieldSequenceIdentifiers])
	assert.Equal(t, "GCCAGCAGT", row[domain.FieldSequences])
	assert.Equal(t, "ASS", row[domain.FieldSequenceAAs])
	assert.Equal(t, "1", row[domain.FieldCounts])
	assert.Equal(t, "IMGT_CDR3", row[domain.FieldRegionTypes])
}

func TestService_ImportFile_MissingSequenceColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "igor.csv", "seq_index,anchors_found,is_inframe\n0,1,1\n")

	svc := NewService(nil)
	_, err := svc.ImportFile(context.Background(), path, DefaultParams())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingColumn))
}

func TestService_ImportFile_MaxFileSizeEnforced(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "igor.csv", igorFile)

	params := DefaultParams()
	params.MaxFileSize = 10 // bytes

	svc := NewService(nil)
	_, err := svc.ImportFile(context.Background(), path, params)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFileTooLarge))
}

func TestService_ImportFile_ColumnMappingSynonyms(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "igor.csv", "seq_index,junction_nt,anchors_found,is_inframe\n0,TGTGCCAGCAGTTTC,1,1\n")

	params := DefaultParams()
	params.ColumnMappingSynonyms = map[string]string{
		"junction_nt": domain.FieldSequences,
	}

	svc := NewService(nil)
	table, err := svc.ImportFile(context.Background(), path, params)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "GCCAGCAGT", table.Rows[0][domain.FieldSequences])
}

func TestService_ImportDataset_Repertoire(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rep1.csv", igorFile)
	writeFile(t, dir, "rep2.csv", `seq_index,nt_CDR3,anchors_found,is_inframe
0,TGTGCCAGCAGTTTC,1,1
1,TGTGCCTGGAGCTTC,1,1
`)
	metadataPath := writeFile(t, dir, "metadata.csv", `filename,subject_id,diagnosis
rep1.csv,subj-1,healthy
rep2.csv,subj-2,celiac
`)

	params := DefaultParams()
	params.Path = dir
	params.MetadataFile = metadataPath

	svc := NewService(nil)
	ds, stats, err := svc.ImportDataset(context.Background(), params, "study1")
	require.NoError(t, err)

	assert.Equal(t, "study1", ds.GetName())
	assert.Equal(t, 3, ds.SequenceCount())
	assert.Equal(t, 5, stats.TotalRows)
	assert.Equal(t, 3, stats.ImportedRows)

	rds, ok := ds.(*domain.RepertoireDataset)
	require.True(t, ok)
	require.Len(t, rds.Repertoires, 2)

	first := rds.Repertoires[0]
	assert.Equal(t, "rep1.csv", first.Filename)
	assert.Equal(t, "subj-1", first.SubjectID)
	assert.Equal(t, map[string]string{"diagnosis": "healthy"}, first.Metadata)
	require.Len(t, first.Sequences, 1)
	assert.Equal(t, "ASS", first.Sequences[0].SequenceAA)
	assert.NotEqual(t, first.ID, rds.Repertoires[1].ID)

	second := rds.Repertoires[1]
	assert.Len(t, second.Sequences, 2)
	assert.Equal(t, domain.RegionTypeIMGTCDR3, second.Sequences[0].RegionType)
	assert.Equal(t, 1, second.Sequences[0].Counts)
}

func TestService_ImportDataset_RepertoireRequiresMetadata(t *testing.T) {
	params := DefaultParams()
	params.Path = t.TempDir()

	svc := NewService(nil)
	_, _, err := svc.ImportDataset(context.Background(), params, "d")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
}

func TestService_ImportDataset_MetadataMissingFilenameColumn(t *testing.T) {
	dir := t.TempDir()
	metadataPath := writeFile(t, dir, "metadata.csv", "subject_id\nsubj-1\n")

	params := DefaultParams()
	params.Path = dir
	params.MetadataFile = metadataPath

	svc := NewService(nil)
	_, _, err := svc.ImportDataset(context.Background(), params, "d")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingColumn))
}

func TestService_ImportDataset_Sequence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "igor.csv", igorFile)

	params := DefaultParams()
	params.Path = dir
	params.IsRepertoire = false
	params.MetadataColumnMapping = map[string]string{
		domain.FieldIsInframe: "frame_type",
	}

	svc := NewService(nil)
	ds, stats, err := svc.ImportDataset(context.Background(), params, "seqs")
	require.NoError(t, err)

	sds, ok := ds.(*domain.SequenceDataset)
	require.True(t, ok)
	require.Len(t, sds.Sequences, 1)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 1, stats.ImportedRows)

	rec := sds.Sequences[0]
	assert.Equal(t, "0", rec.Identifier)
	assert.Equal(t, "GCCAGCAGT", rec.SequenceNT)
	assert.Equal(t, "ASS", rec.SequenceAA)
	assert.Equal(t, map[string]string{"frame_type": "1"}, rec.Metadata)
}

func TestService_ImportDataset_InvalidParams(t *testing.T) {
	svc := NewService(nil)

	t.Run("empty path", func(t *testing.T) {
		_, _, err := svc.ImportDataset(context.Background(), DefaultParams(), "d")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
	})

	t.Run("unknown region type", func(t *testing.T) {
		params := DefaultParams()
		params.Path = t.TempDir()
		params.Pipeline.RegionType = "CDR2"
		_, _, err := svc.ImportDataset(context.Background(), params, "d")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
	})

	t.Run("empty sequence dataset directory", func(t *testing.T) {
		params := DefaultParams()
		params.Path = t.TempDir()
		params.IsRepertoire = false
		_, _, err := svc.ImportDataset(context.Background(), params, "d")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "igor.csv", igorFile)

	svc := NewService(nil)
	table, err := svc.ImportFile(context.Background(), path, DefaultParams())
	require.NoError(t, err)

	data, err := WriteCSV(table)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "sequence_aas")
	assert.Contains(t, out, "GCCAGCAGT")
	assert.Contains(t, out, "ASS")
	assert.Contains(t, out, "IMGT_CDR3")
}
