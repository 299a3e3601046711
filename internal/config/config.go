// Package config loads workbook layout, labels and defaults from komaplan.yaml,
// a .env file and KOMAPLAN_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/utils"
)

// ScheduleConfig locates the annual schedule sheet.
type ScheduleConfig struct {
	Path              string `mapstructure:"path"`
	Sheet             string `mapstructure:"sheet"`
	HeaderRows        int    `mapstructure:"header_rows"`
	DateColumn        int    `mapstructure:"date_column"`
	GradeColumn       int    `mapstructure:"grade_column"`
	MarkerStartColumn int    `mapstructure:"marker_start_column"`
}

// ReportConfig locates the cumulative report and the day-by-day schedule sheet.
type ReportConfig struct {
	Path            string `mapstructure:"path"`
	CumulativeSheet string `mapstructure:"cumulative_sheet"`
	FirstRow        int    `mapstructure:"first_row"`
	FirstColumn     int    `mapstructure:"first_column"`
	ScheduleSheet   string `mapstructure:"schedule_sheet"`
}

// LabelsConfig holds the display text written to the report workbook.
type LabelsConfig struct {
	ThisWeek string   `mapstructure:"this_week"`
	Done     string   `mapstructure:"done"`
	Weekdays []string `mapstructure:"weekdays"` // Sunday first
}

type Config struct {
	Schedule           ScheduleConfig `mapstructure:"schedule"`
	Report             ReportConfig   `mapstructure:"report"`
	Labels             LabelsConfig   `mapstructure:"labels"`
	DefaultAnnualUnits float64        `mapstructure:"default_annual_units"`
	// File is the config file that was read, empty when only defaults applied.
	File string `mapstructure:"-"`
}

// WeekdayLabel returns the label for a weekday, falling back to its English abbreviation.
func (c *Config) WeekdayLabel(wd int) string {
	if wd >= 0 && wd < len(c.Labels.Weekdays) && c.Labels.Weekdays[wd] != "" {
		return c.Labels.Weekdays[wd]
	}
	return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}[wd%7]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.path", "")
	v.SetDefault("schedule.sheet", "ANNUAL_SCHEDULE")
	v.SetDefault("schedule.header_rows", 1)
	v.SetDefault("schedule.date_column", 1)
	v.SetDefault("schedule.grade_column", 2)
	v.SetDefault("schedule.marker_start_column", 3)

	v.SetDefault("report.path", "")
	v.SetDefault("report.cumulative_sheet", "CUMULATIVE")
	v.SetDefault("report.first_row", 2)
	v.SetDefault("report.first_column", 2)
	v.SetDefault("report.schedule_sheet", "MODULE_SCHEDULE")

	v.SetDefault("labels.this_week", "今週")
	v.SetDefault("labels.done", "済")
	v.SetDefault("labels.weekdays", []string{"日", "月", "火", "水", "木", "金", "土"})

	v.SetDefault("default_annual_units", 0.0)
}

// Load reads path (may be empty or missing) after loading .env files from the
// working directory and the config directory. Environment variables win over the file.
func Load(path string) (*Config, error) {
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	envFiles := []string{".env"}
	if expanded != "" && filepath.Dir(expanded) != "." {
		envFiles = append(envFiles, filepath.Join(filepath.Dir(expanded), ".env"))
	}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			logger.Debug("Loaded env file", "path", envFile)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if expanded != "" {
		if _, err := os.Stat(expanded); err == nil {
			v.SetConfigFile(expanded)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
			}
			cfg.File = expanded
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config %s: %w", expanded, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Schedule.Path, err = utils.ExpandPath(cfg.Schedule.Path); err != nil {
		return nil, err
	}
	if cfg.Report.Path, err = utils.ExpandPath(cfg.Report.Path); err != nil {
		return nil, err
	}
	if cfg.DefaultAnnualUnits < 0 {
		return nil, fmt.Errorf("default_annual_units must not be negative")
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}
