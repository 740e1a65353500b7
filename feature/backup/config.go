package backup

// Config holds configuration for spreadsheet backups.
type Config struct {
	// Dir is where retained backups are written; empty means beside the spreadsheet.
	Dir string `mapstructure:"dir" default:""`
	// Keep is how many retained backups to keep per spreadsheet; 0 keeps all.
	Keep int `mapstructure:"keep" default:"0"`
}
