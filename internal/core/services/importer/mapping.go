package importer

import (
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/dataset"
)

// applyColumnMapping renames source columns to canonical field names. For
// every target the primary mapping could not resolve, the synonym mapping
// is attempted instead. Unresolved targets are left for the pipeline's
// required-column check to report.
func applyColumnMapping(t *dataset.Table, mapping, synonyms map[string]string) {
	resolved := make(map[string]bool, len(mapping))

	for src, dst := range mapping {
		if t.HasColumn(src) {
			t.RenameColumn(src, dst)
			resolved[dst] = true
		}
	}

	for src, dst := range synonyms {
		if !resolved[dst] && !t.HasColumn(dst) && t.HasColumn(src) {
			t.RenameColumn(src, dst)
			resolved[dst] = true
		}
	}
}
