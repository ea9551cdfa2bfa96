package main

import (
	"log"

	"go-pos-sync/internal/model"
	"go-pos-sync/pkg/database"

	"github.com/joho/godotenv"
)

// Seeds demo operators and a small catalog into the remote backend, which
// terminals then pull down through the sync client.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectRemote()
	if db == nil {
		log.Fatal("❌ DATABASE_URL must point at the remote backend to seed")
	}
	db.AutoMigrate(&model.Operator{}, &model.Category{}, &model.Product{},
		&model.Sale{}, &model.SaleItem{}, &model.Terminal{})

	// 3. Operators
	operators := []struct {
		Name string
		PIN  string
	}{
		{"Jane", "1234"},
		{"Marco", "2345"},
	}
	for _, o := range operators {
		var count int64
		db.Model(&model.Operator{}).Where("name = ?", o.Name).Count(&count)
		if count > 0 {
			continue
		}
		op := &model.Operator{Name: o.Name, IsActive: true}
		if err := op.SetPIN(o.PIN); err != nil {
			log.Fatalf("❌ Failed to hash PIN for %s: %v", o.Name, err)
		}
		if err := db.Create(op).Error; err != nil {
			log.Fatalf("❌ Failed to create operator %s: %v", o.Name, err)
		}
		log.Printf("✅ Operator created: %s / PIN %s", o.Name, o.PIN)
	}

	// 4. Categories + products
	categories := []struct {
		Name     string
		Order    int
		Products []struct {
			Name  string
			Price float64
			Stock int
		}
	}{
		{"Drinks", 1, []struct {
			Name  string
			Price float64
			Stock int
		}{
			{"Espresso", 2.49, 100},
			{"Latte", 4.99, 100},
			{"Iced Tea", 3.25, 80},
		}},
		{"Snacks", 2, []struct {
			Name  string
			Price float64
			Stock int
		}{
			{"Croissant", 3.50, 40},
			{"Muffin", 2.95, 40},
		}},
	}

	for _, c := range categories {
		var category model.Category
		err := db.Where("name = ?", c.Name).First(&category).Error
		if err != nil {
			category = model.Category{Name: c.Name, SortOrder: c.Order}
			if err := db.Create(&category).Error; err != nil {
				log.Fatalf("❌ Failed to create category %s: %v", c.Name, err)
			}
			log.Printf("✅ Category created: %s", c.Name)
		}

		for _, p := range c.Products {
			var count int64
			db.Model(&model.Product{}).Where("name = ?", p.Name).Count(&count)
			if count > 0 {
				continue
			}
			product := model.Product{
				Name:       p.Name,
				Price:      p.Price,
				Stock:      p.Stock,
				IsActive:   true,
				CategoryID: &category.ID,
			}
			if err := db.Create(&product).Error; err != nil {
				log.Fatalf("❌ Failed to create product %s: %v", p.Name, err)
			}
			log.Printf("✅ Product created: %s (%.2f)", p.Name, p.Price)
		}
	}

	log.Println("Seeding complete")
}
