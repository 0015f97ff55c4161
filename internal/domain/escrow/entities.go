package escrow

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a claimable amount of one asset held in custody for a user.
// A row exists only while Amount is positive.
type Balance struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	User      string          `gorm:"column:owner;size:64;not null;uniqueIndex:ux_escrow_balances_user_asset"`
	Asset     string          `gorm:"column:asset;size:64;not null;uniqueIndex:ux_escrow_balances_user_asset"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(39,0);not null"`
	ExpiresAt time.Time       `gorm:"column:expires_at;index"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Balance) TableName() string { return "escrow_balances" }
