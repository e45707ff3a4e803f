// Package importhelper provides the shared table-level cleanup operations
// used by format importers: region trimming, empty-sequence removal and
// illegal-character removal.
package importhelper

import (
	"strings"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/dataset"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
)

// JunctionToCDR3 converts IMGT junction sequences to CDR3 by stripping
// the first and last residue from the amino acid sequence and the first
// and last codon from the nucleotide sequence. Any region type other than
// IMGT_CDR3 leaves the table untouched; sequences too short to trim
// become empty and are removed by the empty-sequence filter afterwards.
func JunctionToCDR3(t *dataset.Table, region domain.RegionType) {
	if region != domain.RegionTypeIMGTCDR3 {
		return
	}

	for _, row := range t.Rows {
		if aa, ok := row[domain.FieldSequenceAAs]; ok {
			if len(aa) >= 2 {
				row[domain.FieldSequenceAAs] = aa[1 : len(aa)-1]
			} else {
				row[domain.FieldSequenceAAs] = ""
			}
		}
		if nt, ok := row[domain.FieldSequences]; ok {
			if len(nt) >= 6 {
				row[domain.FieldSequences] = nt[3 : len(nt)-3]
			} else {
				row[domain.FieldSequences] = ""
			}
		}
	}
}

// DropEmptySequences removes rows with empty sequence fields. The two
// flags state whether empty amino acid or nucleotide sequences may be
// imported; a column that is absent from the table is not checked.
func DropEmptySequences(t *dataset.Table, importEmptyAA, importEmptyNT bool) int {
	checkAA := !importEmptyAA && t.HasColumn(domain.FieldSequenceAAs)
	checkNT := !importEmptyNT && t.HasColumn(domain.FieldSequences)
	if !checkAA && !checkNT {
		return 0
	}

	return t.Filter(func(row dataset.Row) bool {
		if checkAA && row[domain.FieldSequenceAAs] == "" {
			return false
		}
		if checkNT && row[domain.FieldSequences] == "" {
			return false
		}
		return true
	})
}

// DropIllegalCharacterSequences removes rows whose active-type sequence
// contains a character outside that type's alphabet. Filtering applies
// only to the sequence type of interest: in amino acid mode the
// nucleotide column is not inspected, and vice versa.
func DropIllegalCharacterSequences(t *dataset.Table, allowIllegal bool, seqType domain.SequenceType) int {
	if allowIllegal {
		return 0
	}

	field := seqType.Field()
	if !t.HasColumn(field) {
		return 0
	}
	alphabet := seqType.Alphabet()

	return t.Filter(func(row dataset.Row) bool {
		return isLegal(row[field], alphabet)
	})
}

func isLegal(seq, alphabet string) bool {
	for i := 0; i < len(seq); i++ {
		if !strings.ContainsRune(alphabet, rune(seq[i])) {
			return false
		}
	}
	return true
}
