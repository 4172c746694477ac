package models

import (
	"time"
)

// AllocationCategory is a single slice of the portfolio. Allocation is an
// integer percentage; a committed set always sums to exactly 100.
type AllocationCategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Allocation int    `json:"allocation"`
}

// PortfolioSnapshot persists the committed allocation set. A new row is
// written on every confirmed submission; the latest row seeds the store on
// startup.
type PortfolioSnapshot struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Categories string    `json:"categories" gorm:"type:text;not null"`
	TxHash     string    `json:"tx_hash" gorm:"type:varchar(80)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name
func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}
