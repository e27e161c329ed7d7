package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles carried in access tokens
const (
	RoleVendor   = "vendor"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// Record status shared by vendors, customers, employees and products
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Vendor is a tenant. Every other record belongs to exactly one vendor.
type Vendor struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Mobile       string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"mobile"`
	Address      string         `gorm:"type:text" json:"address"`
	BusinessName string         `gorm:"type:varchar(255)" json:"business_name"`
	GSTNumber    string         `gorm:"type:varchar(20)" json:"gst_number"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Status       string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Customer buys from a single vendor
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	VendorID  uint           `gorm:"not null;index" json:"vendor_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Mobile    string         `gorm:"type:varchar(20);not null;index" json:"mobile"`
	Address   string         `gorm:"type:text" json:"address"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Employee records sales on behalf of their vendor
type Employee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	VendorID  uint           `gorm:"not null;index" json:"vendor_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Mobile    string         `gorm:"type:varchar(20);not null;index" json:"mobile"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
