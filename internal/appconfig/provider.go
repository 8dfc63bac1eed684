// Package appconfig resolves named duration policies. Policies come from a
// static set (environment defaults or a YAML file), from PostgreSQL, or from
// a Redis read-through cache in front of either; Chain layers them.
package appconfig

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ett/internal/appconfig/models"
	"ett/pkg/platform/sentinel"
)

// Provider looks up a named policy. Implementations return an error wrapping
// sentinel.ErrNotFound when the name has no value.
type Provider interface {
	GetAppConfig(ctx context.Context, name models.ConfigName) (*models.AppConfig, error)
}

// Static serves policies from memory. It is safe for concurrent reads; it is
// never mutated after construction.
type Static struct {
	values map[models.ConfigName]models.AppConfig
}

func NewStatic(configs ...*models.AppConfig) *Static {
	s := &Static{values: make(map[models.ConfigName]models.AppConfig, len(configs))}
	for _, c := range configs {
		if c != nil {
			s.values[c.Name] = *c
		}
	}
	return s
}

func (s *Static) GetAppConfig(_ context.Context, name models.ConfigName) (*models.AppConfig, error) {
	c, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("config %s: %w", name, sentinel.ErrNotFound)
	}
	return &c, nil
}

type policyFile struct {
	Policies []struct {
		Name        string `yaml:"name"`
		Value       int64  `yaml:"value"`
		Description string `yaml:"description"`
	} `yaml:"policies"`
}

// LoadFile reads a YAML policy file:
//
//	policies:
//	  - name: stale-admin-vacancy
//	    value: 2592000
//	    description: thirty days
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML policy content. Unknown names and negative values are rejected.
func Parse(raw []byte) (*Static, error) {
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode policy file: %w", err)
	}
	configs := make([]*models.AppConfig, 0, len(f.Policies))
	for _, p := range f.Policies {
		name, err := models.ParseConfigName(p.Name)
		if err != nil {
			return nil, err
		}
		c, err := models.NewAppConfig(name, p.Value, p.Description)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return NewStatic(configs...), nil
}

// Chain asks each provider in order and returns the first value found. Any
// error other than not-found stops the lookup and is returned unchanged.
type Chain []Provider

func (c Chain) GetAppConfig(ctx context.Context, name models.ConfigName) (*models.AppConfig, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		cfg, err := p.GetAppConfig(ctx, name)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("config %s: %w", name, sentinel.ErrNotFound)
}
