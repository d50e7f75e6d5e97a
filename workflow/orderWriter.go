package workflow

import (
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderWriter inserts purchase order headers and lines on the caller's transaction.
type OrderWriter struct{}

func (OrderWriter) InsertPurchaseOrder(tx *gorm.DB, order *models.PurchaseOrder) error {
	return tx.Omit(clause.Associations).Create(order).Error
}

func (OrderWriter) InsertPurchaseOrderLine(tx *gorm.DB, line *models.PurchaseOrderLine) error {
	return tx.Create(line).Error
}
