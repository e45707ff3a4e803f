package domain

// Canonical column names used in imported sequence tables. Source-format
// columns (e.g. IGoR's nt_CDR3) are renamed to these via the column mapping.
const (
	FieldSequences           = "sequences"
	FieldSequenceAAs         = "sequence_aas"
	FieldSequenceIdentifiers = "sequence_identifiers"
	FieldAnchorsFound        = "anchors_found"
	FieldIsInframe           = "is_inframe"
	FieldCounts              = "counts"
	FieldRegionTypes         = "region_types"
)

// RegionType identifies which part of the receptor sequence a record holds.
// IMGT_CDR3 differs from the IMGT junction by one residue at each end.
type RegionType string

const (
	RegionTypeIMGTCDR3     RegionType = "IMGT_CDR3"
	RegionTypeIMGTJunction RegionType = "IMGT_JUNCTION"
	RegionTypeFullSequence RegionType = "FULL_SEQUENCE"
)

// String returns the canonical region type name
func (r RegionType) String() string {
	return string(r)
}

// ValidRegionTypes returns the list of supported region types
func ValidRegionTypes() []RegionType {
	return []RegionType{
		RegionTypeIMGTCDR3,
		RegionTypeIMGTJunction,
		RegionTypeFullSequence,
	}
}

// IsValidRegionType checks if a region type is supported
func IsValidRegionType(r RegionType) bool {
	for _, v := range ValidRegionTypes() {
		if v == r {
			return true
		}
	}
	return false
}

// SequenceType is the active sequence mode of the broader analysis: it
// selects which sequence field the illegal-character filter inspects.
type SequenceType string

const (
	SequenceTypeAminoAcid  SequenceType = "amino_acid"
	SequenceTypeNucleotide SequenceType = "nucleotide"
)

// Alphabet returns the set of legal characters for the sequence type.
// The unknown-residue placeholder '_' is deliberately absent from the
// amino acid alphabet: untranslatable codons make a row illegal.
func (s SequenceType) Alphabet() string {
	switch s {
	case SequenceTypeNucleotide:
		return "ACGT"
	default:
		return "ACDEFGHIKLMNPQRSTVWY*"
	}
}

// Field returns the canonical column the sequence type reads from
func (s SequenceType) Field() string {
	if s == SequenceTypeNucleotide {
		return FieldSequences
	}
	return FieldSequenceAAs
}

// SequenceRecord is one normalized rearrangement event after import
type SequenceRecord struct {
	Identifier string            `json:"identifier"`
	SequenceNT string            `json:"sequence_nt"`
	SequenceAA string            `json:"sequence_aa"`
	Counts     int               `json:"counts"`
	RegionType RegionType        `json:"region_type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
