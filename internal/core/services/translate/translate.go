// Package translate maps nucleotide sequences to amino acid sequences
// using the standard genetic code.
package translate

const (
	// StopSymbol marks a stop codon in translated output
	StopSymbol = '*'
	// UnknownResidue marks a codon outside the standard genetic code
	// (ambiguity codes, gaps, lowercase)
	UnknownResidue = '_'
)

// codonTable is the standard genetic code: 61 sense codons plus the three
// stop codons TAA, TAG and TGA.
var codonTable = map[string]byte{
	"ATA": 'I', "ATC": 'I', "ATT": 'I', "ATG": 'M',
	"ACA": 'T', "ACC": 'T', "ACG": 'T', "ACT": 'T',
	"AAC": 'N', "AAT": 'N', "AAA": 'K', "AAG": 'K',
	"AGC": 'S', "AGT": 'S', "AGA": 'R', "AGG": 'R',
	"CTA": 'L', "CTC": 'L', "CTG": 'L', "CTT": 'L',
	"CCA": 'P', "CCC": 'P', "CCG": 'P', "CCT": 'P',
	"CAC": 'H', "CAT": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGA": 'R', "CGC": 'R', "CGG": 'R', "CGT": 'R',
	"GTA": 'V', "GTC": 'V', "GTG": 'V', "GTT": 'V',
	"GCA": 'A', "GCC": 'A', "GCG": 'A', "GCT": 'A',
	"GAC": 'D', "GAT": 'D', "GAA": 'E', "GAG": 'E',
	"GGA": 'G', "GGC": 'G', "GGG": 'G', "GGT": 'G',
	"TCA": 'S', "TCC": 'S', "TCG": 'S', "TCT": 'S',
	"TTC": 'F', "TTT": 'F', "TTA": 'L', "TTG": 'L',
	"TAC": 'Y', "TAT": 'Y', "TAA": '*', "TAG": '*',
	"TGC": 'C', "TGT": 'C', "TGA": '*', "TGG": 'W',
}

// Translate converts a nucleotide sequence to an amino acid sequence by
// reading non-overlapping codons left to right in frame 0. Trailing
// characters that do not form a full codon are discarded, so the output
// length is always len(nt)/3. Codons outside the standard genetic code
// become UnknownResidue rather than an error.
func Translate(nt string) string {
	n := len(nt) / 3
	if n == 0 {
		return ""
	}
	aa := make([]byte, n)
	for i := 0; i < n; i++ {
		codon := nt[i*3 : i*3+3]
		if residue, ok := codonTable[codon]; ok {
			aa[i] = residue
		} else {
			aa[i] = UnknownResidue
		}
	}
	return string(aa)
}
