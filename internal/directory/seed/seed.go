// Package seed reads the static directory document and installs it after
// the configured warm-up delay.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gartstein/directory/internal/directory/models"
	"gopkg.in/yaml.v3"
)

// Seed is the initial snapshot handed to the store.
type Seed struct {
	Companies  []models.Company
	Industries []string
}

type document struct {
	Companies  []record `json:"companies" yaml:"companies"`
	Industries []string `json:"industries" yaml:"industries"`
}

// record accepts both historical shapes of a company: founded or
// foundedYear, and location as text or as a city/state/country object.
type record struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Industry    string   `json:"industry" yaml:"industry"`
	Location    location `json:"location" yaml:"location"`
	Employees   int      `json:"employees" yaml:"employees"`
	Revenue     int64    `json:"revenue" yaml:"revenue"`
	Founded     int      `json:"founded" yaml:"founded"`
	FoundedYear int      `json:"foundedYear" yaml:"foundedYear"`
	Website     string   `json:"website" yaml:"website"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
}

type location string

type locationParts struct {
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Country string `json:"country" yaml:"country"`
}

func (p locationParts) String() string {
	return models.ComposeLocation(p.City, p.State, p.Country)
}

func (l *location) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = location(text)
		return nil
	}
	var parts locationParts
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("location must be text or an object: %w", err)
	}
	*l = location(parts.String())
	return nil
}

func (l *location) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = location(node.Value)
		return nil
	}
	var parts locationParts
	if err := node.Decode(&parts); err != nil {
		return fmt.Errorf("location must be text or a mapping: %w", err)
	}
	*l = location(parts.String())
	return nil
}

func (r record) company() models.Company {
	founded := r.Founded
	if founded == 0 {
		founded = r.FoundedYear
	}
	website := r.Website
	if website == "" {
		website = r.URL
	}
	return models.Company{
		ID:          r.ID,
		Name:        r.Name,
		Industry:    r.Industry,
		Location:    string(r.Location),
		Employees:   r.Employees,
		Revenue:     r.Revenue,
		Founded:     founded,
		Website:     website,
		Description: r.Description,
	}
}

// Load reads a seed file. Files ending in .yaml or .yml are parsed as YAML,
// anything else as JSON.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	s := &Seed{
		Companies:  make([]models.Company, len(doc.Companies)),
		Industries: doc.Industries,
	}
	for i, r := range doc.Companies {
		s.Companies[i] = r.company()
	}
	if s.Industries == nil {
		s.Industries = []string{}
	}
	return s, nil
}

// After runs fn once delay has elapsed. Cancelling ctx first suppresses
// the call. The returned channel closes when fn has run or was suppressed.
func After(ctx context.Context, delay time.Duration, fn func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			fn(ctx)
		}
	}()
	return done
}
