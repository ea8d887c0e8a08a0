package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrder struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	Delivery   string          `gorm:"size:200" json:"delivery"`
	Cost       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	ScanUrl    string          `gorm:"size:500" json:"scanUrl"`
	Attachment AttachmentInfo  `gorm:"type:text" json:"attachment"`
	SupplierId string          `gorm:"size:36;index" json:"supplierId,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`

	Supplier *Supplier  `gorm:"foreignKey:SupplierId" json:"supplier,omitempty"`
	Payments []*Payment `gorm:"foreignKey:PurchaseOrderId" json:"payments,omitempty"`

	// aggregation columns computed on list, never persisted
	TotalPaid decimal.Decimal `gorm:"-" json:"totalPaid"`
	TotalDebt decimal.Decimal `gorm:"-" json:"totalDebt"`
}

func (p *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
