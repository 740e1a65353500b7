package catalog

// Config holds the location and filtering of the card catalog source.
type Config struct {
	// DataPath is the directory holding the catalog files.
	DataPath string `mapstructure:"data_path" default:"~/.mtgcdb"`
	// IncludeOnlineOnly keeps printings from online-only sets.
	IncludeOnlineOnly bool `mapstructure:"include_online_only" default:"false"`
}
