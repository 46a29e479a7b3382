package main

import (
	"flag"
	"fmt"
	"log"

	"civicwatch/internal/repository/sqlite"
)

// Recomputes the department column for stored reports whose summaries
// route to a specific department under the current rules.
func main() {
	dbPath := flag.String("db", "data/reports.db", "Database path")
	flag.Parse()

	fmt.Printf("Backfilling departments in %s\n", *dbPath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewReportRepository(db, ".")

	updated, err := repo.BackfillDepartments()
	if err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	if updated == 0 {
		fmt.Println("All reports already up to date")
		return
	}
	fmt.Printf("Updated %d reports\n", updated)
}
