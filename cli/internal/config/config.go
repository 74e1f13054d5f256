package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8087"

type Config struct {
	CurrentProfile string              `yaml:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles"`
	path           string
}

type Profile struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
}

func Default() *Config {
	return &Config{
		CurrentProfile: "default",
		Profiles:       make(map[string]*Profile),
	}
}

func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfgFile = filepath.Join(home, ".ctrace", "config.yaml")
	}

	cfg := Default()
	cfg.path = cfgFile

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	if c.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(home, ".ctrace", "config.yaml")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

func (c *Config) SaveProfile(name, serverURL, token string) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}

	c.Profiles[name] = &Profile{
		ServerURL: serverURL,
		Token:     token,
	}

	c.CurrentProfile = name
	return c.Save()
}

// GetProfile returns the named profile, or the current one when name is
// empty. A missing default profile resolves to the local server so the
// CLI works out of the box.
func (c *Config) GetProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}

	profile, ok := c.Profiles[name]
	if !ok {
		if name == "default" {
			return &Profile{ServerURL: defaultServerURL}, nil
		}
		return nil, fmt.Errorf("profile '%s' not found", name)
	}

	if profile.ServerURL == "" {
		profile.ServerURL = defaultServerURL
	}
	return profile, nil
}

func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(c.Profiles, name)

	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}

	return c.Save()
}
