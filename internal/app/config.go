package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/scoring"
	"github.com/lexiscreen/screening-backend/internal/utils"
)

type Config struct {
	Port           string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	ScoringPolicy  scoring.PolicyName
	RequireRatings bool
	CORSOrigins    []string
}

// scoringFile is the optional YAML override for the product-variant knobs:
// which scoring policy is live and whether ratings gate category completion.
type scoringFile struct {
	Scoring struct {
		Policy         string `yaml:"policy"`
		RequireRatings *bool  `yaml:"require_ratings"`
	} `yaml:"scoring"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60, log)) * time.Minute,
		ScoringPolicy:  scoring.PolicyName(utils.GetEnv("SCORING_POLICY", string(scoring.PolicyAveragedCategory), log)),
		RequireRatings: utils.GetEnvAsBool("REQUIRE_RATINGS", true, log),
		CORSOrigins:    splitOrigins(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5174", log)),
	}

	if path := utils.GetEnv("SCORING_CONFIG_FILE", "", log); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read scoring config %s: %w", path, err)
		}
		var file scoringFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse scoring config %s: %w", path, err)
		}
		if file.Scoring.Policy != "" {
			cfg.ScoringPolicy = scoring.PolicyName(file.Scoring.Policy)
		}
		if file.Scoring.RequireRatings != nil {
			cfg.RequireRatings = *file.Scoring.RequireRatings
		}
	}

	if _, err := scoring.NewPolicy(cfg.ScoringPolicy); err != nil {
		return Config{}, fmt.Errorf("invalid scoring policy %q", cfg.ScoringPolicy)
	}
	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
