// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/order"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&catalog.Product{},
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock)",
		"CREATE INDEX IF NOT EXISTS idx_products_prescription ON products(requires_prescription, is_active)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_status ON order_status_history(status)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedAdminUser creates the default admin account
func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@medicare.local").First(&existing)
	if result.Error == nil {
		log.Println("Admin user already exists, skipping")
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Email:        "admin@medicare.local",
		PasswordHash: string(hash),
		Name:         "Pharmacy Admin",
		IsAdmin:      true,
		IsActive:     true,
	}

	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Admin user created: admin@medicare.local")
	return nil
}

// seedProducts creates the initial pharmacy catalog
func (m *Migration) seedProducts() error {
	log.Println("💊 Seeding products...")

	products := []catalog.Product{
		{
			Name:        "Paracetamol 500mg",
			Slug:        "paracetamol-500mg",
			Description: "Pain reliever and fever reducer, strip of 15 tablets",
			Category:    "Pain Relief",
			Price:       25,
			Stock:       150,
			Unit:        "strip",
			IsActive:    true,
		},
		{
			Name:        "Ibuprofen 400mg",
			Slug:        "ibuprofen-400mg",
			Description: "Anti-inflammatory pain relief, strip of 10 tablets",
			Category:    "Pain Relief",
			Price:       45,
			Stock:       80,
			Unit:        "strip",
			IsActive:    true,
		},
		{
			Name:        "Cetirizine 10mg",
			Slug:        "cetirizine-10mg",
			Description: "Antihistamine for allergy relief, strip of 10 tablets",
			Category:    "Allergy",
			Price:       35,
			Stock:       120,
			Unit:        "strip",
			IsActive:    true,
		},
		{
			Name:        "Vitamin C 1000mg",
			Slug:        "vitamin-c-1000mg",
			Description: "Immunity booster, bottle of 30 tablets",
			Category:    "Vitamins",
			Price:       180,
			Stock:       60,
			Unit:        "bottle",
			IsActive:    true,
		},
		{
			Name:        "Vitamin D3 60000 IU",
			Slug:        "vitamin-d3-60000-iu",
			Description: "Weekly vitamin D supplement, pack of 4 capsules",
			Category:    "Vitamins",
			Price:       120,
			Stock:       40,
			Unit:        "pack",
			IsActive:    true,
		},
		{
			Name:                 "Amoxicillin 500mg",
			Slug:                 "amoxicillin-500mg",
			Description:          "Antibiotic, strip of 10 capsules",
			Category:             "Antibiotics",
			Price:                95,
			Stock:                30,
			Unit:                 "strip",
			RequiresPrescription: true,
			IsActive:             true,
		},
		{
			Name:                 "Azithromycin 500mg",
			Slug:                 "azithromycin-500mg",
			Description:          "Antibiotic, strip of 3 tablets",
			Category:             "Antibiotics",
			Price:                110,
			Stock:                25,
			Unit:                 "strip",
			RequiresPrescription: true,
			IsActive:             true,
		},
		{
			Name:        "Digital Thermometer",
			Slug:        "digital-thermometer",
			Description: "Fast-read digital thermometer with fever alarm",
			Category:    "Devices",
			Price:       250,
			Stock:       20,
			Unit:        "piece",
			IsActive:    true,
		},
		{
			Name:        "Hand Sanitizer 500ml",
			Slug:        "hand-sanitizer-500ml",
			Description: "70% alcohol-based hand sanitizer pump bottle",
			Category:    "Hygiene",
			Price:       150,
			Stock:       90,
			Unit:        "bottle",
			IsActive:    true,
		},
		{
			Name:        "ORS Sachets",
			Slug:        "ors-sachets",
			Description: "Oral rehydration salts, pack of 10 sachets",
			Category:    "First Aid",
			Price:       60,
			Stock:       200,
			Unit:        "pack",
			IsActive:    true,
		},
		{
			Name:        "Adhesive Bandages",
			Slug:        "adhesive-bandages",
			Description: "Assorted waterproof bandages, box of 50",
			Category:    "First Aid",
			Price:       85,
			Stock:       75,
			Unit:        "box",
			IsActive:    true,
		},
		{
			Name:        "Cough Syrup 100ml",
			Slug:        "cough-syrup-100ml",
			Description: "Honey-based cough relief syrup",
			Category:    "Cold & Flu",
			Price:       75,
			Stock:       55,
			Unit:        "bottle",
			IsActive:    true,
		},
	}

	for _, p := range products {
		var existing catalog.Product
		result := m.db.Where("slug = ?", p.Slug).First(&existing)
		if result.Error == nil {
			continue
		}
		if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.Name, err)
		}
	}

	log.Printf("✅ Seeded %d products", len(products))
	return nil
}
