package migrations

import (
	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", &createTable{model: &models.User{}, table: "users"})
	migration.Register("20260101000001_create_categories_table", &createTable{model: &models.Category{}, table: "categories"})
	migration.Register("20260101000002_create_products_table", &createTable{model: &models.Product{}, table: "products"})
	migration.Register("20260101000003_create_orders_table", &createTable{model: &models.Order{}, table: "orders"})
	migration.Register("20260101000004_create_order_items_table", &createTable{model: &models.OrderItem{}, table: "order_items"})
}

type createTable struct {
	model interface{}
	table string
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
