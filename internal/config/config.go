package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath string `yaml:"db_path"`

	// Duplicate-detection thresholds. Historical defaults, tunable because
	// none of them is backed by anything stronger than field experience.
	ProximityWindowMinutes int     `yaml:"proximity_window_minutes"`
	OverlapWindowMinutes   int     `yaml:"overlap_window_minutes"`
	FamilySimilarity       float64 `yaml:"family_similarity"`
	GivenSimilarity        float64 `yaml:"given_similarity"`
	NameSimilarity         float64 `yaml:"name_similarity"`
	TitleSimilarity        float64 `yaml:"title_similarity"`

	// Completeness targets, in CFU.
	ClassTargetCFU       float64 `yaml:"class_target_cfu"`
	TransversalTargetCFU float64 `yaml:"transversal_target_cfu"`

	// Optional YAML file overriding the curriculum keyword table and the
	// per-pathway credit requirements.
	CurriculumPath string `yaml:"curriculum_path"`

	// Periodic audit job; empty disables it.
	AuditSchedule string `yaml:"audit_schedule"`
	Timezone      string `yaml:"timezone"`

	// Optional Slack notification of scheduled audit summaries.
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ProximityWindowMinutes, "PROXIMITY_WINDOW_MINUTES")
	envOverrideInt(&cfg.OverlapWindowMinutes, "OVERLAP_WINDOW_MINUTES")
	envOverrideFloat(&cfg.FamilySimilarity, "FAMILY_SIMILARITY")
	envOverrideFloat(&cfg.GivenSimilarity, "GIVEN_SIMILARITY")
	envOverrideFloat(&cfg.NameSimilarity, "NAME_SIMILARITY")
	envOverrideFloat(&cfg.TitleSimilarity, "TITLE_SIMILARITY")
	envOverrideFloat(&cfg.ClassTargetCFU, "CLASS_TARGET_CFU")
	envOverrideFloat(&cfg.TransversalTargetCFU, "TRANSVERSAL_TARGET_CFU")
	envOverride(&cfg.CurriculumPath, "CURRICULUM_PATH")
	envOverride(&cfg.AuditSchedule, "AUDIT_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./calendario.db"
	}
	if cfg.ProximityWindowMinutes == 0 {
		cfg.ProximityWindowMinutes = 90
	}
	if cfg.OverlapWindowMinutes == 0 {
		cfg.OverlapWindowMinutes = 30
	}
	if cfg.FamilySimilarity == 0 {
		cfg.FamilySimilarity = 0.75
	}
	if cfg.GivenSimilarity == 0 {
		cfg.GivenSimilarity = 0.9
	}
	if cfg.NameSimilarity == 0 {
		cfg.NameSimilarity = 0.8
	}
	if cfg.TitleSimilarity == 0 {
		cfg.TitleSimilarity = 0.6
	}
	if cfg.ClassTargetCFU == 0 {
		cfg.ClassTargetCFU = 12
	}
	if cfg.TransversalTargetCFU == 0 {
		cfg.TransversalTargetCFU = 36
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate
	for name, v := range map[string]float64{
		"family_similarity": cfg.FamilySimilarity,
		"given_similarity":  cfg.GivenSimilarity,
		"name_similarity":   cfg.NameSimilarity,
		"title_similarity":  cfg.TitleSimilarity,
	} {
		if v < 0 || v > 1 {
			log.Fatalf("invalid %s '%f': must be between 0 and 1", name, v)
		}
	}
	if cfg.ProximityWindowMinutes < 0 {
		log.Fatalf("invalid proximity_window_minutes '%d': must be >= 0", cfg.ProximityWindowMinutes)
	}
	if cfg.OverlapWindowMinutes < 0 {
		log.Fatalf("invalid overlap_window_minutes '%d': must be >= 0", cfg.OverlapWindowMinutes)
	}
	if cfg.ClassTargetCFU < 0 || cfg.TransversalTargetCFU < 0 {
		log.Fatalf("credit targets must be >= 0 (class=%f transversal=%f)", cfg.ClassTargetCFU, cfg.TransversalTargetCFU)
	}
	if cfg.SlackChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_channel_id is set but slack_bot_token is empty")
	}

	if cfg.Timezone == "Local" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}
