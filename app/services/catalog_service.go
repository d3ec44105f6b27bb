package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/repositories"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"github.com/shashiranjanraj/heartscript/pkg/storage"
	"github.com/shashiranjanraj/heartscript/pkg/validate"
)

// RelatedLimit caps the related products on a product page.
const RelatedLimit = 3

type CatalogService struct {
	repo   *repositories.CatalogRepository
	images ImageUploader
}

func NewCatalogService(repo *repositories.CatalogRepository, images ImageUploader) *CatalogService {
	return &CatalogService{repo: repo, images: images}
}

// ParseCategoryFilter turns a query value into a category id; "", "all"
// and "0" mean no filter.
func ParseCategoryFilter(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, invalid("category", "invalid category filter %q", raw)
	}
	return uint(n), nil
}

// ListProducts returns all products, or one category's when filter names one.
func (s *CatalogService) ListProducts(ctx context.Context, filter string) ([]models.Product, error) {
	categoryID, err := ParseCategoryFilter(filter)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.Products(ctx, categoryID)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return products, nil
}

// ProductDetail is a product with a few siblings from its category.
type ProductDetail struct {
	Product models.Product
	Related []models.Product
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (ProductDetail, error) {
	p, err := s.repo.Product(ctx, id)
	if orm.IsNotFound(err) {
		return ProductDetail{}, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return ProductDetail{}, persistence("get product", err)
	}

	related, err := s.repo.Related(ctx, p, RelatedLimit)
	if err != nil {
		return ProductDetail{}, persistence("related products", err)
	}
	return ProductDetail{Product: p, Related: related}, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, persistence("list categories", err)
	}
	return cats, nil
}

func (s *CatalogService) AddCategory(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("name", "Category name is required.")
	}
	if len(name) > 100 {
		return models.Category{}, invalid("name", "Category name may not be longer than 100 characters.")
	}

	taken, err := s.repo.CategoryNameTaken(ctx, name)
	if err != nil {
		return models.Category{}, persistence("check category", err)
	}
	if taken {
		return models.Category{}, invalid("name", "Category %q already exists.", name)
	}

	c := models.Category{Name: name}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return models.Category{}, persistence("create category", err)
	}
	logger.WithCtx(ctx).Info("catalog: category added", "category_id", c.ID)
	return c, nil
}

// ProductInput is the admin's add-product form.
type ProductInput struct {
	Name        string `form:"name" validate:"required,max=100"`
	Price       int64  `form:"price" validate:"min=1"`
	CategoryID  uint   `form:"category_id" validate:"required"`
	Description string `form:"description" validate:"max=2000"`
	ImageURL    string `form:"image_url" validate:"max=500"`
}

// AddProduct stores a product; an uploaded image wins over ImageURL.
func (s *CatalogService) AddProduct(ctx context.Context, in ProductInput, image *Upload) (models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if field, msg, failed := validate.First(in); failed {
		return models.Product{}, &ValidationError{Field: field, Message: msg}
	}

	ok, err := s.repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return models.Product{}, persistence("check category", err)
	}
	if !ok {
		return models.Product{}, invalid("category_id", "The selected category does not exist.")
	}

	url := strings.TrimSpace(in.ImageURL)
	if image != nil {
		if url, err = uploadImage(ctx, s.images, image); err != nil {
			return models.Product{}, err
		}
	}

	p := models.Product{
		Name:        in.Name,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    url,
	}
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return models.Product{}, persistence("create product", err)
	}
	logger.WithCtx(ctx).Info("catalog: product added", "product_id", p.ID, "category_id", p.CategoryID)
	return p, nil
}

func uploadImage(ctx context.Context, images ImageUploader, image *Upload) (string, error) {
	if images == nil {
		return "", invalid("image", "Image uploads are not available.")
	}
	url, err := images.Upload(ctx, image.Filename, image.Body)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return "", invalid("image", "The image must be a JPEG, PNG, GIF or WebP file.")
	}
	if err != nil {
		return "", persistence("upload image", err)
	}
	return url, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	ok, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return persistence("delete product", err)
	}
	if !ok {
		return &NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

// DeleteCategory removes a category together with its products. Orders are
// snapshots and stay as they are.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	ok, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return persistence("delete category", err)
	}
	if !ok {
		return &NotFoundError{Resource: "category", ID: id}
	}
	return nil
}
