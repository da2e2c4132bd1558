package main

import (
	_ "embed"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// EngineConfig holds the fixed product assumptions of the projection.
// None of them are user inputs; they live here so tests can override them.
type EngineConfig struct {
	HorizonYears          int     `yaml:"horizon_years" json:"horizon_years"`
	InflationRate         float64 `yaml:"inflation_rate" json:"inflation_rate"`                   // Property price inflation p.a. (0.02 = 2%)
	ContractCostRate      float64 `yaml:"contract_cost_rate" json:"contract_cost_rate"`           // Contract cost p.a.
	FundCostRate          float64 `yaml:"fund_cost_rate" json:"fund_cost_rate"`                   // Fund cost p.a.
	AnnualFlatFee         float64 `yaml:"annual_flat_fee" json:"annual_flat_fee"`                 // Charged at the start of every fund year
	IncludeAncillaryCosts bool    `yaml:"include_ancillary_costs" json:"include_ancillary_costs"` // Finance the transaction costs as well
}

// AnnualCostLoad returns contract plus fund cost as a decimal rate
func (e EngineConfig) AnnualCostLoad() float64 {
	return e.ContractCostRate + e.FundCostRate
}

// HorizonMonths returns the number of simulated months
func (e EngineConfig) HorizonMonths() int {
	return e.HorizonYears * 12
}

// DefaultEngineConfig returns the product constants used by every observed version of the calculator
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HorizonYears:          15,
		InflationRate:         0.02,
		ContractCostRate:      0.013,
		FundCostRate:          0.002,
		AnnualFlatFee:         36,
		IncludeAncillaryCosts: true,
	}
}

// ReportConfig holds document and export settings
type ReportConfig struct {
	Title           string        `yaml:"title" json:"title"`
	FilenamePrefix  string        `yaml:"filename_prefix" json:"filename_prefix"`
	TickStep        float64       `yaml:"tick_step" json:"tick_step"`             // Value-axis tick spacing in EUR
	MaxTimeLabels   int           `yaml:"max_time_labels" json:"max_time_labels"` // Upper bound for year labels on the time axis
	ShowEquityRatio bool          `yaml:"show_equity_ratio" json:"show_equity_ratio"`
	ExportDir       string        `yaml:"export_dir" json:"export_dir"`
	ExportRetention time.Duration `yaml:"export_retention" json:"export_retention"` // 0 disables pruning
}

// LayoutConfig extracts the geometry-relevant report settings
func (r ReportConfig) LayoutConfig() LayoutConfig {
	lc := DefaultLayoutConfig()
	if r.TickStep > 0 {
		lc.TickStep = r.TickStep
	}
	if r.MaxTimeLabels > 0 {
		lc.MaxTimeLabels = r.MaxTimeLabels
	}
	lc.ShowEquityRatio = r.ShowEquityRatio
	return lc
}

// SensitivityConfig holds the expected-return range for the sensitivity table (percent values)
type SensitivityConfig struct {
	ReturnMin float64 `yaml:"return_min" json:"return_min"`
	ReturnMax float64 `yaml:"return_max" json:"return_max"`
	Step      float64 `yaml:"step" json:"step"`
}

// ServerConfig holds web server and logging settings
type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	Environment string `yaml:"environment" json:"environment"` // "development" or "production"
	LogLevel    string `yaml:"log_level" json:"log_level"`
}

// Config holds the complete configuration
type Config struct {
	Inputs      ProjectionInput   `yaml:"inputs" json:"inputs"`
	Engine      EngineConfig      `yaml:"engine" json:"engine"`
	Report      ReportConfig      `yaml:"report" json:"report"`
	Sensitivity SensitivityConfig `yaml:"sensitivity" json:"sensitivity"`
	Server      ServerConfig      `yaml:"server" json:"server"`
}

// LoadDefaultConfig loads the embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(preprocessPercentages(defaultConfigYAML)), &config); err != nil {
		return nil, errors.Wrap(err, "parse embedded default config")
	}
	return &config, nil
}

// LoadConfig loads a YAML file on top of the embedded defaults.
// Keys missing from the file keep their default values.
func LoadConfig(filename string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", filename)
	}
	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	header := []byte(`# Finanzieren auf Probe configuration
# Generated by goTrialFinancing - feel free to edit manually
#
#   inputs:  percentages as numbers (6.0 = 6% p.a.), amounts in EUR
#   engine:  decimals (0.02 = 2%) or "2%"
#   report:  export_retention as a duration (168h), 0 keeps exports forever
#
# See default-config.yaml for all available options.

`)
	return errors.Wrapf(os.WriteFile(filename, append(header, data...), 0644), "write config %s", filename)
}

// Input keys are already expressed in percent, so "6%" there means 6, not 0.06.
var percentInputKeys = map[string]bool{
	"expected_return_rate":      true,
	"interest_rate":             true,
	"amortization_rate":         true,
	"ancillary_cost_percentage": true,
	"return_min":                true,
	"return_max":                true,
	"step":                      true,
}

var percentPattern = regexp.MustCompile(`(?m)^(\s*)([a-z_]+)(:\s*)(\d+\.?\d*)%`)

// preprocessPercentages converts values like "2%" to "0.02", except for keys in percentInputKeys
func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) < 5 {
			return match
		}
		num, err := decimal.NewFromString(parts[4])
		if err != nil {
			return match
		}
		if !percentInputKeys[parts[2]] {
			// Decimal division keeps "1.3%" at exactly 0.013
			num = num.Div(decimal.NewFromInt(100))
		}
		return parts[1] + parts[2] + parts[3] + num.String()
	})
}

// ApplyEnvOverrides loads .env (if present) and applies TRIAL_* variables
func ApplyEnvOverrides(config *Config, envFile string) {
	// .env is optional
	_ = godotenv.Load(envFile)

	if v := strings.TrimSpace(os.Getenv("TRIAL_ADDR")); v != "" {
		config.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAL_ENV")); v != "" {
		config.Server.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAL_LOG_LEVEL")); v != "" {
		config.Server.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAL_EXPORT_DIR")); v != "" {
		config.Report.ExportDir = v
	}
}
