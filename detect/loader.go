package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"socforge/core"
)

// ruleFile is the YAML document shape for rule files: a top-level "rules"
// list of detection rule definitions.
type ruleFile struct {
	Rules []core.DetectionRule `yaml:"rules"`
}

// LoadRules reads detection rules from a YAML file, or from every
// .yaml/.yml file in a directory. Rules failing validation are excluded
// and reported as diagnostics; a rule file that cannot be read or parsed
// at all is an error.
func LoadRules(path string, logger *zap.SugaredLogger) ([]core.DetectionRule, []core.Diagnostic, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat rule path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read rule directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	var rules []core.DetectionRule
	var diags []core.Diagnostic

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read rule file %s: %w", file, err)
		}
		var doc ruleFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("failed to parse rule file %s: %w", file, err)
		}

		for i := range doc.Rules {
			rule := doc.Rules[i]
			if rule.ID == "" {
				rule.ID = uuid.NewString()
			}
			if err := rule.Validate(); err != nil {
				logger.Warnw("excluding invalid rule from loaded set",
					"file", file, "rule_name", rule.Name, "error", err)
				diags = append(diags, core.NewDiagnostic(err))
				continue
			}
			rules = append(rules, rule)
		}
		logger.Infof("loaded %d rules from %s", len(doc.Rules), file)
	}

	return rules, diags, nil
}
