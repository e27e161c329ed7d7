package main

import (
	"fmt"
	"os"

	_ "vendorledger/api/swagger" // swagger docs
)

// @title           Vendor Ledger API
// @version         1.0
// @description     Multi-tenant sales, invoicing and payment ledger for vendors and their customers.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
