package seeders

import (
	"errors"

	"github.com/shashiranjanraj/heartscript/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("catalog", SeedCatalog)
}

var starterCatalog = map[string][]models.Product{
	"Cards": {
		{Name: "Handwritten Love Letter", Price: 299, Description: "A letter in your words, calligraphed on textured paper."},
		{Name: "Pop-up Heart Card", Price: 199, Description: "A folded card with a 3D heart inside."},
	},
	"Frames": {
		{Name: "Polaroid Wall Frame", Price: 799, Description: "Twelve of your photos on a string-light frame."},
		{Name: "Song Lyrics Frame", Price: 649, Description: "Your song's lyrics set around a photo."},
	},
	"Hampers": {
		{Name: "Chocolate Memory Box", Price: 1199, Description: "Chocolates with printed notes tucked between them."},
	},
}

// SeedCatalog inserts the starter categories and products once. It is a
// no-op when any category already exists.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range []string{"Cards", "Frames", "Hampers"} {
			category := models.Category{Name: name}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			products := starterCatalog[name]
			if len(products) == 0 {
				return errors.New("seeders: empty starter category " + name)
			}
			for _, p := range products {
				p.CategoryID = category.ID
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
