package domain

import "github.com/google/uuid"

// Dataset is the common surface of the two dataset kinds the importer
// produces. Downstream analysis only needs the name and the record count.
type Dataset interface {
	GetName() string
	SequenceCount() int
}

// Repertoire is the set of sequences observed for one biological sample
type Repertoire struct {
	ID        uuid.UUID         `json:"id"`
	Filename  string            `json:"filename"`
	SubjectID string            `json:"subject_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Sequences []SequenceRecord  `json:"sequences"`
}

// RepertoireDataset groups repertoires for per-repertoire predictions,
// such as predicting a disease state.
type RepertoireDataset struct {
	Name        string       `json:"name"`
	Repertoires []Repertoire `json:"repertoires"`
}

// GetName returns the dataset name
func (d *RepertoireDataset) GetName() string {
	return d.Name
}

// SequenceCount returns the total number of sequences across repertoires
func (d *RepertoireDataset) SequenceCount() int {
	total := 0
	for _, r := range d.Repertoires {
		total += len(r.Sequences)
	}
	return total
}

// SequenceDataset holds unpaired single-chain sequences for per-sequence
// predictions, like antigen specificity.
type SequenceDataset struct {
	Name      string           `json:"name"`
	Sequences []SequenceRecord `json:"sequences"`
}

// GetName returns the dataset name
func (d *SequenceDataset) GetName() string {
	return d.Name
}

// SequenceCount returns the number of sequences in the dataset
func (d *SequenceDataset) SequenceCount() int {
	return len(d.Sequences)
}
