package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings mirrors the optional yaml config file. Zero values mean
// "keep the flag/default value".
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	IndexWidth int    `yaml:"index_width"`
	Encoding   string `yaml:"encoding"`
}

func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read settings file %q", path)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse settings file %q", path)
	}

	if s.IndexWidth != 0 {
		if err := SetIndexWidth(IndexWidth(s.IndexWidth)); err != nil {
			return nil, err
		}
	}
	if s.Encoding != "" {
		if err := SetEncoding(s.Encoding); err != nil {
			return nil, err
		}
	}

	return &s, nil
}
