package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

type scheduleFile struct {
	Weekday map[string]string `yaml:"weekday"`
	Weekend map[string]string `yaml:"weekend"`
}

// LoadSchedule returns the built-in table when path is empty, otherwise parses
// the YAML file at path. Both day types must list all five slots.
func LoadSchedule(path string) (domain.Table, error) {
	if path == "" {
		return domain.DefaultTable(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, err
	}
	return ParseSchedule(b)
}

// ParseSchedule decodes a YAML schedule document.
func ParseSchedule(b []byte) (domain.Table, error) {
	var f scheduleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.Table{}, fmt.Errorf("decode schedule: %w", err)
	}
	weekday, err := slotTimes(f.Weekday)
	if err != nil {
		return domain.Table{}, fmt.Errorf("weekday: %w", err)
	}
	weekend, err := slotTimes(f.Weekend)
	if err != nil {
		return domain.Table{}, fmt.Errorf("weekend: %w", err)
	}
	return domain.NewTable(weekday, weekend)
}

func slotTimes(raw map[string]string) (map[domain.Slot]int, error) {
	out := make(map[domain.Slot]int, len(raw))
	for name, hhmm := range raw {
		slot, err := domain.ParseSlot(name)
		if err != nil {
			return nil, err
		}
		m, err := domain.ParseHHMM(hhmm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[slot] = m
	}
	return out, nil
}
