package workflow

import (
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryWriter inserts delivery headers and lines on the caller's transaction.
type DeliveryWriter struct{}

func (DeliveryWriter) InsertDelivery(tx *gorm.DB, delivery *models.Delivery) error {
	return tx.Omit(clause.Associations).Create(delivery).Error
}

func (DeliveryWriter) InsertDeliveryLine(tx *gorm.DB, line *models.DeliveryLine) error {
	return tx.Create(line).Error
}
