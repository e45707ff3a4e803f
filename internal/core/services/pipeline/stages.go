package pipeline

import (
	"strings"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/dataset"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importhelper"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/translate"
)

// defaultCounts inserts a counts column of 1 when the source file carries
// none. An existing counts column is never overwritten.
func defaultCounts(t *dataset.Table) int {
	t.AddColumn(domain.FieldCounts, "1")
	return 0
}

// filterAnchors keeps only rows where IMGT anchors were located. Rows
// without anchors are expected low-quality data, not malformed input.
func filterAnchors(t *dataset.Table) int {
	return t.Filter(func(row dataset.Row) bool {
		return row[domain.FieldAnchorsFound] == "1"
	})
}

// filterOutOfFrame keeps only in-frame rows
func filterOutOfFrame(t *dataset.Table) int {
	return t.Filter(func(row dataset.Row) bool {
		return row[domain.FieldIsInframe] == "1"
	})
}

// translateSequences derives the amino acid sequence for every remaining
// row. Rows are independent; order is preserved.
func translateSequences(t *dataset.Table) int {
	for _, row := range t.Rows {
		row[domain.FieldSequenceAAs] = translate.Translate(row[domain.FieldSequences])
	}
	if !t.HasColumn(domain.FieldSequenceAAs) {
		t.Columns = append(t.Columns, domain.FieldSequenceAAs)
	}
	return 0
}

// filterStopCodons drops rows whose translation contains a stop symbol
// anywhere, not just at the end.
func filterStopCodons(t *dataset.Table) int {
	return t.Filter(func(row dataset.Row) bool {
		return !strings.ContainsRune(row[domain.FieldSequenceAAs], translate.StopSymbol)
	})
}

// trimRegion applies the junction-to-CDR3 convention and stamps every row
// with the configured region type name.
func trimRegion(region domain.RegionType) func(*dataset.Table) int {
	return func(t *dataset.Table) int {
		importhelper.JunctionToCDR3(t, region)
		t.SetColumn(domain.FieldRegionTypes, region.String())
		return 0
	}
}

// dropEmptySequences removes rows with an empty amino acid sequence
// unconditionally (the field is always derived here, never authoritative)
// and rows with an empty nucleotide sequence unless permitted.
func dropEmptySequences(importEmptyNT bool) func(*dataset.Table) int {
	return func(t *dataset.Table) int {
		return importhelper.DropEmptySequences(t, false, importEmptyNT)
	}
}

// dropIllegalCharacters removes rows whose active-type sequence contains
// characters outside the alphabet.
func dropIllegalCharacters(seqType domain.SequenceType) func(*dataset.Table) int {
	return func(t *dataset.Table) int {
		return importhelper.DropIllegalCharacterSequences(t, false, seqType)
	}
}
