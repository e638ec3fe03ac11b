package material

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialLog is immutable once written.
type MaterialLog struct {
	ID          string          `gorm:"column:id;primaryKey" json:"id"`
	ReceiptCode string          `gorm:"column:receipt_code;uniqueIndex" json:"receiptCode"`
	RecyclerID  string          `gorm:"column:recycler_id;index:idx_material_logs_recycler_logged,priority:1" json:"recyclerId"`
	EventID     *string         `gorm:"column:event_id;index" json:"eventId,omitempty"`
	Material    string          `gorm:"column:material" json:"material"`
	Weight      float64         `gorm:"column:weight" json:"weight"`
	Rate        decimal.Decimal `gorm:"column:rate;type:decimal(12,4)" json:"rate"`
	Earnings    decimal.Decimal `gorm:"column:earnings;type:decimal(12,2)" json:"earnings"`
	LoggedAt    time.Time       `gorm:"column:logged_at;index:idx_material_logs_recycler_logged,priority:2" json:"loggedAt"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (MaterialLog) TableName() string { return "material_logs" }

type RecordRequest struct {
	RecyclerID string   `json:"recyclerId"`
	EventID    *string  `json:"eventId"`
	Material   string   `json:"material"`
	Weight     *float64 `json:"weight"`
}
