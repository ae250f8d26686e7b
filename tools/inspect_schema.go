package main

import (
	"fmt"
	"log"

	"github.com/localnerve/napkins/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema, tables first then their indexes
	var entries []struct {
		Type string
		Name string
		SQL  string
	}
	db.Raw("SELECT type, name, sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY type DESC, name").Scan(&entries)

	for _, e := range entries {
		fmt.Printf("\n=== %s: %s ===\n", e.Type, e.Name)
		fmt.Println(e.SQL)
	}
}
