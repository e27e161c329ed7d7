// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"vendorledger/internal/database"
	"vendorledger/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database private to the test.
// A single connection keeps every statement on the same in-memory schema,
// so code under test must use the transaction context it is handed.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// MockDB wraps a GORM postgres dialect over sqlmock.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-flavoured GORM handle backed by sqlmock.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// Fixture is a vendor with one employee, two customers and one product.
type Fixture struct {
	Vendor        model.Vendor
	Employee      model.Employee
	Customer      model.Customer
	OtherCustomer model.Customer
	Product       model.Product
}

// Seed inserts a Fixture.
func Seed(t *testing.T, db *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Vendor: model.Vendor{
			Name: "Asha Dairy", Email: "asha@example.com", Mobile: "9000000001",
			PasswordHash: "x", Status: model.StatusActive,
		},
	}
	require.NoError(t, db.Create(&f.Vendor).Error)

	f.Employee = model.Employee{VendorID: f.Vendor.ID, Name: "Ravi", Mobile: "9000000002", Status: model.StatusActive}
	f.Customer = model.Customer{VendorID: f.Vendor.ID, Name: "Meera", Mobile: "9000000003", Status: model.StatusActive}
	f.OtherCustomer = model.Customer{VendorID: f.Vendor.ID, Name: "Kiran", Mobile: "9000000004", Status: model.StatusActive}
	f.Product = model.Product{VendorID: f.Vendor.ID, Name: "Milk 1L", Price: decimal.NewFromInt(60), Status: model.StatusActive}
	require.NoError(t, db.Create(&f.Employee).Error)
	require.NoError(t, db.Create(&f.Customer).Error)
	require.NoError(t, db.Create(&f.OtherCustomer).Error)
	require.NoError(t, db.Create(&f.Product).Error)
	return f
}

// AddSale inserts an unbilled sale of quantity 1 at amount on day.
func AddSale(t *testing.T, db *gorm.DB, f Fixture, customerID uint, amount string, day time.Time) model.Sale {
	t.Helper()

	price := decimal.RequireFromString(amount)
	sale := model.Sale{
		VendorID:     f.Vendor.ID,
		CustomerID:   customerID,
		ProductID:    f.Product.ID,
		Quantity:     1,
		PricePerUnit: price,
		TotalAmount:  price,
		SaleDate:     day.UTC(),
		CreatedBy:    f.Vendor.ID,
	}
	require.NoError(t, db.Create(&sale).Error)
	return sale
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
