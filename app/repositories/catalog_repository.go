package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"gorm.io/gorm"
)

// CategoriesCacheKey holds the cached category list.
const CategoriesCacheKey = "catalog:categories"

const categoriesTTL = time.Hour

// CatalogRepository handles categories and products.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Categories returns every category by id, served from Redis when cached.
func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := orm.On(r.db).WithContext(ctx).Model(&models.Category{}).Order("id").Cache(ctx, CategoriesCacheKey, categoriesTTL, &cats)
	return cats, err
}

func (r *CatalogRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	return orm.On(r.db).WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Exists()
}

func (r *CatalogRepository) CategoryNameTaken(ctx context.Context, name string) (bool, error) {
	return orm.On(r.db).WithContext(ctx).Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).Exists()
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	orm.Forget(ctx, CategoriesCacheKey)
	return nil
}

// DeleteCategory removes the category and its products in one
// transaction. It reports false when no category had that id.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		orm.Forget(ctx, CategoriesCacheKey)
	}
	return deleted, nil
}

// Products lists products in insertion order; categoryID 0 means all.
func (r *CatalogRepository) Products(ctx context.Context, categoryID uint) ([]models.Product, error) {
	q := orm.On(r.db).WithContext(ctx).Model(&models.Product{}).Preload("Category").Order("id")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var products []models.Product
	err := q.Get(&products)
	return products, err
}

func (r *CatalogRepository) Product(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.On(r.db).WithContext(ctx).Model(&models.Product{}).Preload("Category").Where("id = ?", id).First(&p)
	return p, err
}

// Related returns up to limit other products of p's category.
func (r *CatalogRepository) Related(ctx context.Context, p models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := orm.On(r.db).WithContext(ctx).Model(&models.Product{}).
		Where("category_id = ? AND id <> ?", p.CategoryID, p.ID).
		Order("id").
		Limit(limit).
		Get(&products)
	return products, err
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(p).Error
}

// DeleteProduct reports false when no product had that id.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected > 0, res.Error
}
