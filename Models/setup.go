package Models

import (
	"fmt"
	"log"

	"AgriDealer/Constants"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database and migrates every table
func Connect() {
	connection, err := Open(Constants.DBDriver, dsn())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := Migrate(connection); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	DB = connection
	log.Printf("Connected to %s database\n", Constants.DBDriver)
}

func dsn() string {
	if Constants.DBDriver != "mysql" {
		return Constants.DBPath
	}
	cfg := mysql.NewConfig()
	cfg.User = Constants.DBUser
	cfg.Passwd = Constants.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = Constants.DBHost
	cfg.DBName = Constants.DBName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Open returns a gorm handle for sqlite (file path or ":memory:") or mysql
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = gormmysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Migrate creates or updates every table, parents first
func Migrate(db *gorm.DB) error {
	// 1. Accounts and catalog, no dependencies
	if err := db.AutoMigrate(&User{}, &Product{}, &DeviceToken{}); err != nil {
		return fmt.Errorf("migrating base tables: %w", err)
	}

	// 2. Farmers and what hangs off them
	if err := db.AutoMigrate(&Farmer{}, &FarmPlot{}, &LedgerEntry{}, &ReminderLog{}); err != nil {
		return fmt.Errorf("migrating farmer tables: %w", err)
	}

	// 3. Commerce
	if err := db.AutoMigrate(&Listing{}, &InventorySignal{}, &Order{}, &OrderLineItem{}); err != nil {
		return fmt.Errorf("migrating commerce tables: %w", err)
	}
	return nil
}
