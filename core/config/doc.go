// Package config provides configuration management for the collection manager.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Command-line flags are applied on top by the cmd package.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Catalog: catalog data path and online-only filtering
//   - Log: logging level and format
//   - Database: collection store driver (in-memory SQLite by default, MySQL optional)
//   - Storage: S3/MinIO credentials for mirroring spreadsheet backups
//   - Backup: backup retention settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.DataPath)
package config
