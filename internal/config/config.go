// Package config loads the workspace configuration. Every tunable
// constant of the pipeline (complexity thresholds, risk weights,
// exclusive tools, reflection thresholds) lives here rather than as a
// literal in the core logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/engine"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/optimizer"
	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/types"
	"github.com/spf13/viper"
)

// Config represents the planforge configuration
type Config struct {
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer"`
	Reflection ReflectionConfig `mapstructure:"reflection"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
}

// AnalyzerConfig contains complexity scoring settings
type AnalyzerConfig struct {
	MediumThreshold  float64 `mapstructure:"medium_threshold"`
	HighThreshold    float64 `mapstructure:"high_threshold"`
	LowMultiplier    float64 `mapstructure:"low_multiplier"`
	MediumMultiplier float64 `mapstructure:"medium_multiplier"`
	HighMultiplier   float64 `mapstructure:"high_multiplier"`
}

// RiskConfig contains risk scoring weights and thresholds
type RiskConfig struct {
	HighWeight      int `mapstructure:"high_weight"`
	MediumWeight    int `mapstructure:"medium_weight"`
	ApprovalWeight  int `mapstructure:"approval_weight"`
	MediumBump      int `mapstructure:"medium_bump"`
	HighBump        int `mapstructure:"high_bump"`
	MediumThreshold int `mapstructure:"medium_threshold"`
	HighThreshold   int `mapstructure:"high_threshold"`
}

// OptimizerConfig contains parallelization settings
type OptimizerConfig struct {
	ExclusiveTools   []string `mapstructure:"exclusive_tools"`
	IntensiveMinutes int      `mapstructure:"intensive_minutes"`
	IntensiveLoad    int      `mapstructure:"intensive_load"`
}

// ReflectionConfig contains goal-alignment thresholds
type ReflectionConfig struct {
	PhaseThreshold  float64 `mapstructure:"phase_threshold"`
	PlanThreshold   float64 `mapstructure:"plan_threshold"`
	RecoveryMinutes int     `mapstructure:"recovery_minutes"`
}

// AuditConfig contains audit trail settings
type AuditConfig struct {
	MaxLogSizeMB int `mapstructure:"max_log_size_mb"`
}

// DefaultsConfig seeds the governance context for new plans
type DefaultsConfig struct {
	AgentID     string               `mapstructure:"agent_id"`
	UserID      string               `mapstructure:"user_id"`
	RiskProfile string               `mapstructure:"risk_profile"`
	Gates       types.ApprovalGates  `mapstructure:"gates"`
	Limits      types.ResourceLimits `mapstructure:"limits"`
	Compliance  []string             `mapstructure:"compliance"`
}

// Load reads the config from the workspace
func Load(workspaceDir string) (*Config, error) {
	configPath := store.ConfigPath(workspaceDir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	a := analyzer.DefaultParams()
	r := governance.DefaultParams()
	o := optimizer.DefaultParams()
	ref := engine.DefaultReflectionParams()
	return &Config{
		Analyzer: AnalyzerConfig{
			MediumThreshold:  a.MediumThreshold,
			HighThreshold:    a.HighThreshold,
			LowMultiplier:    a.LowMultiplier,
			MediumMultiplier: a.MediumMultiplier,
			HighMultiplier:   a.HighMultiplier,
		},
		Risk: RiskConfig{
			HighWeight:      r.HighWeight,
			MediumWeight:    r.MediumWeight,
			ApprovalWeight:  r.ApprovalWeight,
			MediumBump:      r.MediumBump,
			HighBump:        r.HighBump,
			MediumThreshold: r.MediumThreshold,
			HighThreshold:   r.HighThreshold,
		},
		Optimizer: OptimizerConfig{
			ExclusiveTools:   o.ExclusiveTools,
			IntensiveMinutes: o.IntensiveMinutes,
			IntensiveLoad:    o.IntensiveLoad,
		},
		Reflection: ReflectionConfig{
			PhaseThreshold:  ref.PhaseThreshold,
			PlanThreshold:   ref.PlanThreshold,
			RecoveryMinutes: ref.RecoveryMinutes,
		},
		Audit: AuditConfig{
			MaxLogSizeMB: 10,
		},
		Defaults: DefaultsConfig{
			AgentID:     "planforge",
			UserID:      defaultUserID(),
			RiskProfile: string(types.ProfileBalanced),
		},
	}
}

func defaultUserID() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "local"
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Analyzer.MediumThreshold == 0 {
		cfg.Analyzer.MediumThreshold = defaults.Analyzer.MediumThreshold
	}
	if cfg.Analyzer.HighThreshold == 0 {
		cfg.Analyzer.HighThreshold = defaults.Analyzer.HighThreshold
	}
	if cfg.Analyzer.LowMultiplier == 0 {
		cfg.Analyzer.LowMultiplier = defaults.Analyzer.LowMultiplier
	}
	if cfg.Analyzer.MediumMultiplier == 0 {
		cfg.Analyzer.MediumMultiplier = defaults.Analyzer.MediumMultiplier
	}
	if cfg.Analyzer.HighMultiplier == 0 {
		cfg.Analyzer.HighMultiplier = defaults.Analyzer.HighMultiplier
	}
	if cfg.Risk.HighWeight == 0 {
		cfg.Risk.HighWeight = defaults.Risk.HighWeight
	}
	if cfg.Risk.MediumWeight == 0 {
		cfg.Risk.MediumWeight = defaults.Risk.MediumWeight
	}
	if cfg.Risk.ApprovalWeight == 0 {
		cfg.Risk.ApprovalWeight = defaults.Risk.ApprovalWeight
	}
	if cfg.Risk.MediumBump == 0 {
		cfg.Risk.MediumBump = defaults.Risk.MediumBump
	}
	if cfg.Risk.HighBump == 0 {
		cfg.Risk.HighBump = defaults.Risk.HighBump
	}
	if cfg.Risk.MediumThreshold == 0 {
		cfg.Risk.MediumThreshold = defaults.Risk.MediumThreshold
	}
	if cfg.Risk.HighThreshold == 0 {
		cfg.Risk.HighThreshold = defaults.Risk.HighThreshold
	}
	if len(cfg.Optimizer.ExclusiveTools) == 0 {
		cfg.Optimizer.ExclusiveTools = defaults.Optimizer.ExclusiveTools
	}
	if cfg.Optimizer.IntensiveMinutes == 0 {
		cfg.Optimizer.IntensiveMinutes = defaults.Optimizer.IntensiveMinutes
	}
	if cfg.Optimizer.IntensiveLoad == 0 {
		cfg.Optimizer.IntensiveLoad = defaults.Optimizer.IntensiveLoad
	}
	if cfg.Reflection.PhaseThreshold == 0 {
		cfg.Reflection.PhaseThreshold = defaults.Reflection.PhaseThreshold
	}
	if cfg.Reflection.PlanThreshold == 0 {
		cfg.Reflection.PlanThreshold = defaults.Reflection.PlanThreshold
	}
	if cfg.Reflection.RecoveryMinutes == 0 {
		cfg.Reflection.RecoveryMinutes = defaults.Reflection.RecoveryMinutes
	}
	if cfg.Audit.MaxLogSizeMB == 0 {
		cfg.Audit.MaxLogSizeMB = defaults.Audit.MaxLogSizeMB
	}
	if cfg.Defaults.AgentID == "" {
		cfg.Defaults.AgentID = defaults.Defaults.AgentID
	}
	if cfg.Defaults.UserID == "" {
		cfg.Defaults.UserID = defaults.Defaults.UserID
	}
	if cfg.Defaults.RiskProfile == "" {
		cfg.Defaults.RiskProfile = defaults.Defaults.RiskProfile
	}
}

// AnalyzerParams converts the config into analyzer constants
func (c *Config) AnalyzerParams() analyzer.Params {
	return analyzer.Params{
		MediumThreshold:  c.Analyzer.MediumThreshold,
		HighThreshold:    c.Analyzer.HighThreshold,
		LowMultiplier:    c.Analyzer.LowMultiplier,
		MediumMultiplier: c.Analyzer.MediumMultiplier,
		HighMultiplier:   c.Analyzer.HighMultiplier,
	}
}

// RiskParams converts the config into risk scoring constants
func (c *Config) RiskParams() governance.Params {
	return governance.Params{
		HighWeight:      c.Risk.HighWeight,
		MediumWeight:    c.Risk.MediumWeight,
		ApprovalWeight:  c.Risk.ApprovalWeight,
		MediumBump:      c.Risk.MediumBump,
		HighBump:        c.Risk.HighBump,
		MediumThreshold: c.Risk.MediumThreshold,
		HighThreshold:   c.Risk.HighThreshold,
	}
}

// OptimizerParams converts the config into optimizer constants
func (c *Config) OptimizerParams() optimizer.Params {
	return optimizer.Params{
		ExclusiveTools:   c.Optimizer.ExclusiveTools,
		IntensiveMinutes: c.Optimizer.IntensiveMinutes,
		IntensiveLoad:    c.Optimizer.IntensiveLoad,
	}
}

// ReflectionParams converts the config into reflection thresholds
func (c *Config) ReflectionParams() engine.ReflectionParams {
	return engine.ReflectionParams{
		PhaseThreshold:  c.Reflection.PhaseThreshold,
		PlanThreshold:   c.Reflection.PlanThreshold,
		RecoveryMinutes: c.Reflection.RecoveryMinutes,
	}
}

// MaxLogSize returns the audit log rotation threshold in bytes
func (c *Config) MaxLogSize() int64 {
	return int64(c.Audit.MaxLogSizeMB) * 1024 * 1024
}

// GovernanceContext builds the default governance context for a new
// plan, with the session id supplied per invocation
func (c *Config) GovernanceContext(sessionID string) types.GovernanceContext {
	return types.GovernanceContext{
		AgentID:     c.Defaults.AgentID,
		UserID:      c.Defaults.UserID,
		SessionID:   sessionID,
		RiskProfile: types.RiskProfile(c.Defaults.RiskProfile),
		Gates:       c.Defaults.Gates,
		Limits:      c.Defaults.Limits,
		Compliance:  c.Defaults.Compliance,
	}
}

// WriteDefault writes a commented starter config to the workspace
func WriteDefault(workspaceDir string) error {
	path := store.ConfigPath(workspaceDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0644)
}

const defaultConfigYAML = `# planforge configuration
# Every value here has a built-in default; delete anything you do not
# want to override.

analyzer:
  medium_threshold: 4
  high_threshold: 7
  low_multiplier: 0.7
  medium_multiplier: 1.0
  high_multiplier: 1.5

risk:
  high_weight: 3
  medium_weight: 2
  approval_weight: 1
  medium_bump: 1
  high_bump: 2
  medium_threshold: 4
  high_threshold: 8

optimizer:
  exclusive_tools: [database-write, system-deploy, file-system-modify]
  intensive_minutes: 30
  intensive_load: 3

reflection:
  phase_threshold: 0.7
  plan_threshold: 0.5
  recovery_minutes: 30

audit:
  max_log_size_mb: 10

defaults:
  agent_id: planforge
  risk_profile: balanced
  gates:
    phase_transition: false
    tool_execution: false
    high_risk_action: true
    plan_modification: true
  limits:
    max_minutes: 0
    max_cost: 0
    max_tool_calls: 0
    allowed_tools: []
`
