package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

// Suite is a keyword suite read from YAML.
type Suite struct {
	Name      string         `yaml:"name"`
	Variables map[string]any `yaml:"variables"`
	Setup     []Step         `yaml:"setup"`
	Steps     []Step         `yaml:"steps"`
	Teardown  []Step         `yaml:"teardown"`

	path string
}

// Step runs one keyword. Args may be any YAML scalar; they are passed to the
// keyword as strings after ${name} substitution.
type Step struct {
	Keyword       string `yaml:"keyword"`
	Description   string `yaml:"description"`
	Args          []any  `yaml:"args"`
	Assign        string `yaml:"assign"`
	Retry         int    `yaml:"retry"`
	RetryInterval string `yaml:"retry-interval"`
	ExpectError   string `yaml:"expect-error"`
}

// Path is the file the suite was loaded from.
func (s *Suite) Path() string {
	return s.path
}

// LoadSuite reads a suite file. A suite without a name is named after the
// file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(path)
	suite, err := ParseSuite(data, strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	suite.path = path
	return suite, nil
}

// ParseSuite decodes a YAML suite. defaultName is used when the suite does
// not name itself.
func ParseSuite(data []byte, defaultName string) (*Suite, error) {
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse suite: %w", err)
	}
	if suite.Name == "" {
		suite.Name = defaultName
	}
	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// LoadSuites loads every .yaml and .yml file in dir, sorted by file name.
func LoadSuites(dir string) ([]*Suite, error) {
	yamlFiles, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan yaml files: %v", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan yml files: %v", err)
	}

	allFiles := append(yamlFiles, ymlFiles...)
	sort.Strings(allFiles)

	suites := make([]*Suite, 0, len(allFiles))
	for _, filePath := range allFiles {
		log.Debugf("Loading suite file: %s", filePath)
		suite, errLoad := LoadSuite(filePath)
		if errLoad != nil {
			return nil, errLoad
		}
		suites = append(suites, suite)
	}
	log.Debugf("Total loaded %d suite files", len(suites))
	return suites, nil
}

// Validate checks that every step names a keyword and has sane retry
// settings.
func (s *Suite) Validate() error {
	for phase, steps := range map[string][]Step{"setup": s.Setup, "steps": s.Steps, "teardown": s.Teardown} {
		for i, step := range steps {
			if strings.TrimSpace(step.Keyword) == "" {
				return fmt.Errorf("%s step %d has no keyword", phase, i+1)
			}
			if step.Retry < 0 {
				return fmt.Errorf("%s step %d has a negative retry", phase, i+1)
			}
		}
	}
	return nil
}
