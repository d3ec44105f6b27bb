package repositories

import (
	"context"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"gorm.io/gorm"
)

// OrderRepository handles orders and their line items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(o).Error; err != nil {
			return err
		}
		if len(o.Items) == 0 {
			return nil
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		return tx.Create(&o.Items).Error
	})
}

// All returns every order with items, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := orm.On(r.db).WithContext(ctx).Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at desc, id desc").
		Get(&orders)
	return orders, err
}

func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := orm.On(r.db).WithContext(ctx).Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&o)
	return o, err
}

// UpdateStatus reports false when no order had that id.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil || res.RowsAffected > 0 {
		return res.Error == nil, res.Error
	}
	// Some drivers count only changed rows; an unchanged status is still a hit.
	return orm.On(r.db).WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Exists()
}

// Delete removes the order and its items. It reports false when no order
// had that id.
func (r *OrderRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}
