package services

import (
	_ "embed"
	"fmt"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/rules.yaml
var defaultRulesYAML []byte

type PromptRules struct {
	Persona         string                     `yaml:"persona"`
	Languages       map[string]string          `yaml:"languages"`
	SafetyRules     []string                   `yaml:"safety_rules"`
	AgeFocus        map[models.AgeGroup]string `yaml:"age_focus"`
	MinorGuard      string                     `yaml:"minor_guard"`
	CheckInGuidance []string                   `yaml:"checkin_guidance"`
}

func ParsePromptRules(raw []byte) (PromptRules, error) {
	var rules PromptRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return PromptRules{}, fmt.Errorf("parse prompt rules: %w", err)
	}
	if len(rules.SafetyRules) == 0 {
		return PromptRules{}, fmt.Errorf("parse prompt rules: safety_rules must not be empty")
	}
	return rules, nil
}

// DefaultPromptRules returns the rules embedded in the binary.
func DefaultPromptRules() PromptRules {
	rules, err := ParsePromptRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rules
}

func (r PromptRules) languageName(code string) string {
	if name, ok := r.Languages[code]; ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}
