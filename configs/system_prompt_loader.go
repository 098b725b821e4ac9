package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SystemPromptConfig defines the structure of system_prompt.yaml
type SystemPromptConfig struct {
	System struct {
		Name    string `yaml:"name"`
		Role    string `yaml:"role"`
		Version string `yaml:"version"`
	} `yaml:"system"`

	Context []string `yaml:"context"`

	Tone struct {
		Style         string `yaml:"style"`
		LanguageLevel string `yaml:"language_level"`
	} `yaml:"tone"`

	Constraints []string `yaml:"constraints"`

	SpecialCommands struct {
		Help struct {
			Trigger  []string `yaml:"trigger"`
			Response string   `yaml:"response"`
		} `yaml:"help"`
	} `yaml:"special_commands"`
}

// DefaultSystemPrompt is used when no YAML file can be read.
func DefaultSystemPrompt() *SystemPromptConfig {
	cfg := &SystemPromptConfig{}
	cfg.System.Name = "KrishiGPT"
	cfg.System.Role = "an agricultural assistant designed to help Indian farmers"
	cfg.Context = []string{
		"Use local context like Maharashtra, Kharif/Rabi crops, rainfall and soil issues.",
	}
	cfg.Tone.Style = "friendly and practical"
	cfg.Tone.LanguageLevel = "simple words a farmer with little formal education understands"
	cfg.SpecialCommands.Help.Trigger = []string{"help", "मदत", "मदद"}
	cfg.SpecialCommands.Help.Response = "Ask me about crops, diseases, fertilizers, weather, mandi prices or government schemes."
	return cfg
}

// LoadSystemPrompt reads the KrishiGPT persona from a YAML file.
func LoadSystemPrompt(path string) (*SystemPromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system prompt file: %w", err)
	}

	var config SystemPromptConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse system prompt YAML: %w", err)
	}
	if strings.TrimSpace(config.System.Role) == "" {
		return nil, fmt.Errorf("system prompt file %s has no system.role", path)
	}
	if config.System.Name == "" {
		config.System.Name = "KrishiGPT"
	}

	return &config, nil
}

// BuildSystemPrompt renders the persona as a system message.
func (c *SystemPromptConfig) BuildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are %s - %s.\n", c.System.Name, c.System.Role))
	for _, line := range c.Context {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if c.Tone.Style != "" || c.Tone.LanguageLevel != "" {
		sb.WriteString("\n## Tone\n")
		if c.Tone.Style != "" {
			sb.WriteString(fmt.Sprintf("- Style: %s\n", c.Tone.Style))
		}
		if c.Tone.LanguageLevel != "" {
			sb.WriteString(fmt.Sprintf("- Language level: %s\n", c.Tone.LanguageLevel))
		}
	}

	if len(c.Constraints) > 0 {
		sb.WriteString("\n## Constraints\n")
		for _, constraint := range c.Constraints {
			sb.WriteString(fmt.Sprintf("- %s\n", constraint))
		}
	}

	return strings.TrimSpace(sb.String())
}

// CheckSpecialCommand reports whether the message is a canned command.
func (c *SystemPromptConfig) CheckSpecialCommand(message string) (bool, string) {
	lowerMsg := strings.ToLower(strings.TrimSpace(message))

	for _, trigger := range c.SpecialCommands.Help.Trigger {
		if lowerMsg == strings.ToLower(trigger) {
			return true, c.SpecialCommands.Help.Response
		}
	}

	return false, ""
}
