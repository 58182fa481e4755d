package imports

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Import record lifecycle: created PROCESSING, moves to exactly one terminal
// state and is never reopened.
const (
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusPartial    = "PARTIAL"
	StatusFailed     = "FAILED"
)

type ImportRecord struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename         string         `gorm:"column:nome_arquivo;size:512" json:"filename"`
	FileHash         string         `gorm:"column:hash_arquivo;size:128;uniqueIndex" json:"file_hash"`
	Status           string         `gorm:"size:20;index" json:"status"`
	RecordsProcessed int            `gorm:"column:registros_processados" json:"records_processed"`
	RecordsInserted  int            `gorm:"column:registros_inseridos" json:"records_inserted"`
	TypeCounts       datatypes.JSON `gorm:"column:tipo_contagens;type:jsonb" json:"type_counts,omitempty"`
	MissingTypes     pq.StringArray `gorm:"column:tipos_ausentes;type:text[]" json:"missing_types,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ImportRecord) TableName() string {
	return "importacoes"
}

type ImportFilterInput struct {
	Status   *string `form:"status" json:"status"`
	Filename *string `form:"filename" json:"filename"`
	Page     int     `form:"page" json:"page"`
	PageSize int     `form:"page_size" json:"page_size"`
}
