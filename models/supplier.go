package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Supplier struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100" json:"email"`
	PhoneNumbers StringList `gorm:"type:text" json:"phoneNumbers"`
	CategoryId   string     `gorm:"size:36;index" json:"categoryId,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`

	Category       *Category        `gorm:"foreignKey:CategoryId" json:"category,omitempty"`
	PurchaseOrders []*PurchaseOrder `gorm:"foreignKey:SupplierId" json:"purchaseOrders,omitempty"`
	Payments       []*Payment       `gorm:"foreignKey:SupplierId" json:"payments,omitempty"`

	// aggregation columns computed on list, never persisted
	TotalPaid decimal.Decimal `gorm:"-" json:"totalPaid"`
	TotalDebt decimal.Decimal `gorm:"-" json:"totalDebt"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
