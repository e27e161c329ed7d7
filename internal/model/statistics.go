package model

import (
	"time"
)

// DashboardResponse summarises a vendor's book for the previous day
type DashboardResponse struct {
	ActiveCustomers   int64           `json:"active_customers"`
	ActiveProducts    int64           `json:"active_products"`
	YesterdaySales    string          `json:"yesterday_sales"`
	TopProduct        *ProductRanking `json:"top_product"`
	OutstandingAmount string          `json:"outstanding_amount"`
	Day               time.Time       `json:"day"`
}

// ProductRanking is a product ranked by quantity sold
type ProductRanking struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int64  `json:"total_quantity"`
	TotalValue    string `json:"total_value"`
}
