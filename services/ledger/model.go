package ledger

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EntryType string

const EntryTypeCredit EntryType = "CREDIT"

type Balance struct {
	ID          string          `gorm:"column:id;primaryKey" json:"-"`
	RecyclerID  string          `gorm:"column:recycler_id;uniqueIndex" json:"recyclerId"`
	Balance     decimal.Decimal `gorm:"column:balance;type:decimal(14,2)" json:"balance"`
	EntryCount  int64           `gorm:"column:entry_count" json:"entryCount"`
	LastEntryID string          `gorm:"column:last_entry_id" json:"lastEntryId,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Balance) TableName() string { return "ledger_balances" }

type LedgerEntry struct {
	ID            string          `gorm:"column:id;primaryKey" json:"id"`
	RecyclerID    string          `gorm:"column:recycler_id;uniqueIndex:idx_ledger_entries_chain,priority:1" json:"recyclerId"`
	Sequence      int64           `gorm:"column:sequence;uniqueIndex:idx_ledger_entries_chain,priority:2" json:"sequence"`
	Type          EntryType       `gorm:"column:type" json:"type"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(14,2)" json:"amount"`
	TransactionID string          `gorm:"column:transaction_id" json:"transactionId"`
	ReferenceID   string          `gorm:"column:reference_id;uniqueIndex" json:"referenceId"`
	Description   string          `gorm:"column:description" json:"description"`
	PreviousHash  string          `gorm:"column:previous_hash" json:"previousHash"`
	Hash          string          `gorm:"column:hash" json:"hash"`
	Metadata      datatypes.JSON  `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

type LedgerParams struct {
	LedgerID      string
	RecyclerID    string
	Sequence      int64
	Type          EntryType
	Amount        decimal.Decimal
	ReferenceID   string
	TransactionID string
	Description   string
	PreviousHash  string
	Metadata      datatypes.JSON
	CreatedAt     time.Time
}

// NewLedgerEntry builds an entry and seals it. CreatedAt is part of the
// hash, so it is fixed here at millisecond precision, which every
// supported dialect stores without loss.
func NewLedgerEntry(p LedgerParams) *LedgerEntry {
	e := &LedgerEntry{
		ID:            p.LedgerID,
		RecyclerID:    p.RecyclerID,
		Sequence:      p.Sequence,
		Type:          p.Type,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		ReferenceID:   p.ReferenceID,
		Description:   p.Description,
		PreviousHash:  p.PreviousHash,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt.UTC().Truncate(time.Millisecond),
	}
	e.Hash = e.GenerateHash()
	return e
}

func (m *LedgerEntry) HashFields() map[string]string {
	return map[string]string{
		"id":             m.ID,
		"recycler_id":    m.RecyclerID,
		"sequence":       fmt.Sprintf("%d", m.Sequence),
		"type":           string(m.Type),
		"amount":         m.Amount.StringFixed(2),
		"transaction_id": m.TransactionID,
		"reference_id":   m.ReferenceID,
		"description":    m.Description,
		"created_at":     m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"previous_hash":  m.PreviousHash,
	}
}

func (m *LedgerEntry) GenerateHash() string {
	fields := m.HashFields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// GenerateTransactionID returns YYYYMMDD-XXXXXX.
func GenerateTransactionID(now time.Time) (string, error) {
	r := make([]byte, 3)
	if _, err := rand.Read(r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(r))), nil
}

type CreditRequest struct {
	RecyclerID  string
	Amount      decimal.Decimal
	ReferenceID string
	Description string
	Metadata    map[string]any
}

type ChainReport struct {
	RecyclerID string          `json:"recyclerId"`
	Valid      bool            `json:"valid"`
	Entries    int             `json:"entries"`
	Total      decimal.Decimal `json:"total"`
	BrokenAt   string          `json:"brokenAt,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}
