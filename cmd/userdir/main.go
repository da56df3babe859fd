// The userdir service exposes CRUD operations on user records over HTTP,
// backed by PostgreSQL, SQLite or an in-memory store.
package main

import (
	"log"

	"github.com/patric-chuzhbe/userdir/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalf("unable to initialize the application: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalf("application run error: %v", err)
	}
}
