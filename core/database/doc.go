// Package database handles the collection store connection and schema inspection.
//
// It provides a wrapper around GORM to open the relational store used during
// one run. The default is a private in-memory SQLite database (a single pooled
// connection with foreign keys enforced), so nothing persists between runs.
// MySQL is available for debugging a run against an external server.
//
// # Schema Inspection
//
// GetTableColumns and RequireColumns let the collection store verify that its
// migrated tables carry the columns the reconciliation relies on.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
package database
