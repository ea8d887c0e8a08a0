package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PaidAt          *time.Time      `json:"paidAt"`
	Description     string          `gorm:"type:text" json:"description"`
	Attachment      AttachmentInfo  `gorm:"type:text" json:"attachment"`
	PurchaseOrderId string          `gorm:"size:36;index" json:"purchaseOrderId,omitempty"`
	SupplierId      string          `gorm:"size:36;index" json:"supplierId,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`

	PurchaseOrder *PurchaseOrder `gorm:"foreignKey:PurchaseOrderId" json:"purchaseOrder,omitempty"`
	Supplier      *Supplier      `gorm:"foreignKey:SupplierId" json:"supplier,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
