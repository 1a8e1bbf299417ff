package db

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"society-booking-backend/config"
	"society-booking-backend/internal/model"
)

// Init initializes the database connection, runs migrations and seeds the
// amenity catalog.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableExclusion && cfg.Driver != "sqlite" {
		log.Println("Applying booking overlap exclusion constraint...")
		if err := applyExclusionDDL(db); err != nil {
			log.Printf("Warning: failed to apply exclusion DDL: %v. Continuing with application-level locking only.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs schema migrations and seeds the amenity catalog.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Admin{},
		&model.Amenity{},
		&model.Booking{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return seedAmenities(db)
}

func seedAmenities(db *gorm.DB) error {
	for _, a := range model.DefaultAmenities {
		var count int64
		if err := db.Model(&model.Amenity{}).Where("id = ?", a.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("amenity seed check failed: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&a).Error; err != nil {
			return fmt.Errorf("amenity seed failed for %q: %w", a.ID, err)
		}
	}
	return nil
}

// EnsureAdmin seeds the bootstrap admin account when it does not exist yet.
func EnsureAdmin(db *gorm.DB, adminID, password string) error {
	if adminID == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.Admin{}).Where("admin_id = ?", adminID).Count(&count).Error; err != nil {
		return fmt.Errorf("admin seed check failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("admin password hash failed: %w", err)
	}
	admin := model.Admin{
		ID:           uuid.NewString(),
		AdminID:      adminID,
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("admin seed failed: %w", err)
	}
	log.Printf("Seeded bootstrap admin account %q", adminID)
	return nil
}

// applyExclusionDDL pushes the no-overlap invariant into Postgres itself: a
// partial GIST exclusion constraint over (amenity, half-open time range)
// rejects the second writer even across replicas.
func applyExclusionDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		"ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_time_valid;",
		"ALTER TABLE bookings ADD CONSTRAINT bookings_time_valid CHECK (start_time < end_time);",

		"ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_no_overlap;",
		"ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap " +
			"EXCLUDE USING GIST (amenity_name WITH =, tstzrange(start_time, end_time, '[)') WITH &&) " +
			"WHERE (status IN ('Pending','Approved'));",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
