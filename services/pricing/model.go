package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialRate stores the CEL expression that prices one material.
type MaterialRate struct {
	Material    string    `gorm:"column:material;primaryKey" json:"material"`
	Expression  string    `gorm:"column:expression" json:"expression"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (MaterialRate) TableName() string { return "material_rates" }

type Source string

const (
	SourceStore  Source = "store"
	SourceConfig Source = "config"
)

type Rate struct {
	Material    string `json:"material"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
	Source      Source `json:"source"`
}

type Quote struct {
	Material string          `json:"material"`
	Rate     decimal.Decimal `json:"rate"`
	Earnings decimal.Decimal `json:"earnings"`
}

type UpsertRateRequest struct {
	Expression  string `json:"expression"`
	Description string `json:"description"`
}
