package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// GeoLocationModel is the GORM model for the geo_locations table
// Columns may be NULL; a NULL column becomes an absent field
type GeoLocationModel struct {
	IP       string  `gorm:"column:ip;primaryKey"`
	Country  *string `gorm:"column:country"`
	Region   *string `gorm:"column:region"`
	City     *string `gorm:"column:city"`
	Org      *string `gorm:"column:org"`
	Timezone *string `gorm:"column:timezone"`
	Postal   *string `gorm:"column:postal"`
}

// TableName specifies the table name for GORM
func (GeoLocationModel) TableName() string {
	return "geo_locations"
}

// MySQLProvider implements Provider using MySQL with GORM
// The table is read-only from this service's point of view
type MySQLProvider struct {
	db *gorm.DB
}

// NewMySQLProvider creates a new MySQL provider using GORM
//
// Parameters:
//   - dsn: Data Source Name
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLProvider(dsn string) (*MySQLProvider, error) {
	config := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLProvider{db: db}, nil
}

// Name returns the provider name
func (p *MySQLProvider) Name() string {
	return "mysql"
}

// Lookup queries: SELECT * FROM geo_locations WHERE ip = ? LIMIT 1
func (p *MySQLProvider) Lookup(ctx context.Context, ip string) (*models.GeoLocation, error) {
	if err := validateIP(ip); err != nil {
		return nil, err
	}

	var record GeoLocationModel
	result := p.db.WithContext(ctx).Where("ip = ?", ip).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	return &models.GeoLocation{
		Country:  record.Country,
		Region:   record.Region,
		City:     record.City,
		Org:      record.Org,
		Timezone: record.Timezone,
		Postal:   record.Postal,
	}, nil
}

// Close closes the database connection
func (p *MySQLProvider) Close() error {
	if p.db != nil {
		sqlDB, err := p.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
