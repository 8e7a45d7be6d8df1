package main

import (
	"fmt"
	"os"

	"github.com/jafarshop/storefront/internal/api/middleware"
)

// Prints a bcrypt hash to put in ADMIN_API_KEY_HASH.
// Usage: go run ./cmd/hash-admin-key <api-key>
func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hash-admin-key <api-key>")
		os.Exit(2)
	}
	hash, err := middleware.HashAPIKey(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
