package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Calendar maps one timetable group to its feed URL.
type Calendar struct {
	Group string `yaml:"group"`
	URL   string `yaml:"url"`
}

type calendarsFile struct {
	Calendars []Calendar `yaml:"calendars"`
}

// LoadCalendars reads the YAML calendars file and returns the configured
// sources in file order. An entry without a group or URL is rejected rather
// than silently skipped, since a typo would otherwise drop a whole group.
func LoadCalendars(path string) ([]Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendars file: %w", err)
	}

	var file calendarsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse calendars file: %w", err)
	}

	for i, cal := range file.Calendars {
		if cal.Group == "" || cal.URL == "" {
			return nil, fmt.Errorf("calendars entry %d: group and url are required", i)
		}
	}

	return file.Calendars, nil
}
