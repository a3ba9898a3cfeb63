package models

import "time"

// BudgetSheet groups budget rows, ordered per user.
type BudgetSheet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetRow is one ledger line. Date is free text as entered or imported.
type BudgetRow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SheetID     uint      `gorm:"index;not null" json:"sheet_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Date        string    `gorm:"size:32" json:"date"`
	Description string    `gorm:"size:512" json:"description"`
	Credit      float64   `gorm:"not null;default:0" json:"credit"`
	Debit       float64   `gorm:"not null;default:0" json:"debit"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}
