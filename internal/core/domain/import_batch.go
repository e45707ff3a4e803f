package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportBatch represents one dataset import call
type ImportBatch struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DatasetName  string     `gorm:"type:varchar(255);not null" json:"dataset_name"`
	SourcePath   string     `gorm:"type:text" json:"source_path"`
	FileHash     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"file_hash"` // For idempotency
	Format       string     `gorm:"type:varchar(50);not null;default:'IGoR'" json:"format"`
	Status       string     `gorm:"type:varchar(50);not null;default:'queued'" json:"status"`
	TotalRows    int        `gorm:"default:0" json:"total_rows"`
	ImportedRows int        `gorm:"default:0" json:"imported_rows"`
	Params       JSONB      `gorm:"type:jsonb" json:"params"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (ImportBatch) TableName() string {
	return "import_batches"
}

// BeforeCreate GORM hook
func (b *ImportBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ValidStatuses returns list of valid batch statuses
func ValidStatuses() []string {
	return []string{
		"queued",
		"parsing",
		"filtering",
		"completed",
		"failed",
	}
}

// IsValidStatus checks if a status is valid
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// JSONB is a custom type for JSONB columns
type JSONB map[string]interface{}

// Value implements driver.Valuer
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(data, j)
}

// ToJSONB converts any JSON-serializable value into a JSONB map
func ToJSONB(v interface{}) (JSONB, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out JSONB
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
