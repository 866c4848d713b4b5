package models

// Verbosity levels selected with repeated --quiet flags.
const (
	VerbosityNormal   = 0
	VerbosityWarnings = 1
	VerbositySilent   = 2
)

// Settings holds the resolved process options, bound from flags, DISCO_*
// environment variables and defaults via Viper.
type Settings struct {
	ConfigPath      string `yaml:"config" mapstructure:"config"`
	ApplicationID   string `yaml:"application_id,omitempty" mapstructure:"application-id"`
	RetryAfter      int    `yaml:"retry_after" mapstructure:"retry-after"`
	Quiet           int    `yaml:"quiet" mapstructure:"quiet"`
	PrintConfigPath bool   `yaml:"print_config_path" mapstructure:"print-config-path"`
	DryRun          bool   `yaml:"dry_run" mapstructure:"dry-run"`
	EventLogPath    string `yaml:"event_log,omitempty" mapstructure:"event-log"`
	MaxIndirection  int    `yaml:"max_indirection" mapstructure:"max-indirection"`
}
