// Package config resolves run settings from Viper and loads operator plan files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/spf13/viper"
)

// Settings is the resolved configuration of one optimize run.
type Settings struct {
	ThresholdAll    *float64
	Output          string
	PlanPath        string
	DuplicatePolicy string
	SkipPolicy      string
	AuditPath       string
	NonInteractive  bool
}

// DefaultOutputName returns the output file name for a run on the given day.
func DefaultOutputName(now time.Time) string {
	return fmt.Sprintf("Portfolio_Optimized_%s.xlsx", now.Format("2006-01-02"))
}

// LoadSettings reads the optimize settings from Viper (config file,
// PORTFOLIO_ environment variables and bound flags) and applies defaults.
func LoadSettings(now time.Time) (*Settings, error) {
	s := &Settings{
		Output:          ExpandPath(viper.GetString("optimize.output")),
		PlanPath:        ExpandPath(viper.GetString("optimize.plan")),
		NonInteractive:  viper.GetBool("optimize.non_interactive"),
		DuplicatePolicy: viper.GetString("groupings.duplicate_policy"),
		SkipPolicy:      viper.GetString("pricing.skip_policy"),
		AuditPath:       ExpandPath(viper.GetString("audit.path")),
	}

	if s.Output == "" {
		s.Output = DefaultOutputName(now)
	}

	if viper.IsSet("optimize.threshold_all") {
		t := viper.GetFloat64("optimize.threshold_all")
		if t < 0 || t > 100 {
			return nil, fmt.Errorf("%w: threshold_all %.2f must be between 0 and 100", common.ErrInvalidConfig, t)
		}
		s.ThresholdAll = &t
	}

	if s.NonInteractive && s.PlanPath == "" && s.ThresholdAll == nil {
		return nil, fmt.Errorf("%w: non-interactive runs need a plan file or threshold_all", common.ErrMissingConfig)
	}

	return s, nil
}

// ExpandPath expands $VAR references and a leading ~ in a path.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
