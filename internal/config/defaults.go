package config

const (
	// DefaultConfigFile is looked up in the working directory when --config is not given
	DefaultConfigFile = "ptx.yaml"
	// DefaultLogLevel is the default zerolog level name
	DefaultLogLevel = "info"
	// DefaultContainerRuntime is the container CLI used for containerized runs
	DefaultContainerRuntime = "docker"
	// DefaultReportFile is read by the report command when no file is given
	DefaultReportFile = "ptx-report.json"
	// DefaultContainerWorkdir is where the owning root is mounted inside the container
	DefaultContainerWorkdir = "/workspace"
)

// DefaultBats holds the shell framework defaults
var DefaultBats = Framework{
	Enabled:    true,
	Pattern:    "**/*.bats",
	Exclude:    "**/node_modules/**,**/vendor/**",
	Timeout:    30000,
	Executable: "bats",
	Image:      "bats/bats:latest",
}

// DefaultPHPUnit holds the unit-test framework defaults
var DefaultPHPUnit = Framework{
	Enabled:          true,
	Pattern:          "**/*Test.php",
	Exclude:          "**/vendor/**,**/node_modules/**",
	Timeout:          60000,
	Executable:       "vendor/bin/phpunit",
	Image:            "php:8.3-cli",
	ContainerCommand: "vendor/bin/phpunit",
}
