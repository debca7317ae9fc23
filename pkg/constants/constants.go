// Package constants provides shared constants for the mortgage-schedule application.
package constants

// DateLayout is the format expected for dates in config files, request bodies
// and rendered output.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CentPlaces is the number of decimal places kept when presenting amounts
	CentPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Loan term constraints
const (
	// MinPeriodCount is the shortest allowed loan term in monthly periods
	MinPeriodCount = 12

	// MaxPeriodCount is the longest allowed loan term in monthly periods
	MaxPeriodCount = 360

	// DefaultMaxAttempts is the number of tries a user gets for each prompted value
	DefaultMaxAttempts = 3
)

// Demo loan used when the simulator runs with sample data.
const (
	DemoPropertyValue                  = 400000.0
	DemoDownPayment                    = 100000.0
	DemoAnnualRatePercent              = 8.0
	DemoPeriodCount                    = 240
	DemoMonthlyLifeInsurancePercent    = 0.03
	DemoAnnualPropertyInsurancePercent = 0.3
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "MORTGAGE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long computed schedules stay cached
	DefaultCacheTTLSeconds = 600

	// DefaultServiceName identifies the service in traces
	DefaultServiceName = "mortgage-schedule"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// BalanceResidueRatio bounds the floating-point residue of the final
	// balance relative to the financed amount.
	BalanceResidueRatio = 1e-6
)
