package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Budget    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"budget"`
	Suppliers []*Supplier     `gorm:"foreignKey:CategoryId" json:"suppliers,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`

	// aggregation columns computed on list, never persisted
	TotalCommitted decimal.Decimal `gorm:"-" json:"totalCommitted"`
	TotalPaid      decimal.Decimal `gorm:"-" json:"totalPaid"`
	Balance        decimal.Decimal `gorm:"-" json:"balance"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
