package correction

import (
	"fmt"
	"os"

	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Source      string `yaml:"source"`
	Replacement string `yaml:"replacement"`
}

// LoadFile reads a YAML rules file:
//
//	rules:
//	  - source: cabbage
//	    replacement: CABG
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, utils.WrapIfNotNil(err, path)
	}
	return rs, nil
}

// Parse decodes YAML rules, preserving declaration order.
func Parse(data []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule, err := NewRule(entry.Source, entry.Replacement)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return NewRuleSet(rules...), nil
}
