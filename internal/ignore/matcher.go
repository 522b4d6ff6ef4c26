package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFile holds gitignore-like rules for documents that must not be cataloged.
const IgnoreFile = ".pdfxrefignore"

type rule struct {
	pattern string
	negated bool
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from user-provided .pdfxrefignore lines.
// Default excludes are prepended and can be overridden by user negation rules.
func NewMatcher(userRules []string) *Matcher {
	defaultRules := []string{
		".*",
		"*.tmp-*",
	}

	all := make([]string, 0, len(defaultRules)+len(userRules))
	all = append(all, defaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}

	return &Matcher{rules: rules}
}

// LoadRules reads <dir>/.pdfxrefignore. A missing file yields no rules.
func LoadRules(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IgnoreFile, err)
	}
	return rules, nil
}

// Load builds a matcher from the rules file in dir.
func Load(dir string) (*Matcher, error) {
	rules, err := LoadRules(dir)
	if err != nil {
		return nil, err
	}
	return NewMatcher(rules), nil
}

// ShouldIgnore returns true when the filename should be excluded from the catalog.
func (m *Matcher) ShouldIgnore(filename string) bool {
	filename = filepath.ToSlash(filename)
	ignored := false
	for _, rule := range m.rules {
		if ok, err := doublestar.Match(rule.pattern, filename); err == nil && ok {
			ignored = !rule.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	line = strings.TrimPrefix(filepath.ToSlash(line), "/")
	if line == "" || !doublestar.ValidatePattern(line) {
		return rule{}, false
	}
	parsed.pattern = line
	return parsed, true
}
