// Package catalog loads tenant service definitions and pricing rules from
// YAML or JSON documents and imports area tables from spreadsheets.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
	"github.com/kosarica/booking-calculator/internal/rules"
)

// Format is a catalog document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the on-disk catalog layout.
type Document struct {
	Services []*pricing.Service `json:"services"`
	Rules    []rules.Rule       `json:"rules,omitempty"`
}

// Catalog is an in-memory, read-mostly set of services and rules.
type Catalog struct {
	mu       sync.RWMutex
	services map[string]*pricing.Service
	rules    []rules.Rule
}

// Load reads a catalog file. The format follows the file extension; anything
// other than .json is read as YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document. YAML is converted to JSON first so both
// encodings share the service decoder that selects the pricing model.
func Parse(data []byte, format Format) (*Catalog, error) {
	if format == FormatYAML {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, "invalid catalog YAML")
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, "catalog YAML is not representable as JSON")
		}
		data = converted
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		if pricingerr.KindOf(err) != "" {
			return nil, err
		}
		return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, "invalid catalog document")
	}
	return New(doc.Services, doc.Rules)
}

// New builds a catalog, checking ids are unique and every pricing model is
// fully configured.
func New(services []*pricing.Service, rs []rules.Rule) (*Catalog, error) {
	c := &Catalog{services: make(map[string]*pricing.Service, len(services))}
	for i, svc := range services {
		if svc == nil || svc.ID == "" {
			return nil, pricingerr.Newf(pricingerr.KindInvalidService, "service #%d has no id", i)
		}
		if _, dup := c.services[svc.ID]; dup {
			return nil, pricingerr.Newf(pricingerr.KindInvalidService, "duplicate service id %s", svc.ID)
		}
		if svc.Model == nil {
			return nil, pricingerr.Newf(pricingerr.KindInvalidService, "service %s has no pricing model", svc.ID).
				WithDetail("serviceId", svc.ID)
		}
		if err := svc.Model.Check(); err != nil {
			return nil, fmt.Errorf("service %s: %w", svc.ID, err)
		}
		c.services[svc.ID] = svc
	}
	for i := range rs {
		if err := rules.ValidateRule(&rs[i]); err != nil {
			return nil, fmt.Errorf("rule #%d (%s): %w", i, rs[i].Name, err)
		}
	}
	c.rules = rs
	return c, nil
}

// Service returns the service with the given id.
func (c *Catalog) Service(id string) (*pricing.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	svc, ok := c.services[id]
	if !ok {
		return nil, pricingerr.Newf(pricingerr.KindNotFound, "service %s not found", id).WithDetail("serviceId", id)
	}
	return svc, nil
}

// Services returns every service ordered by id.
func (c *Catalog) Services() []*pricing.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*pricing.Service, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put adds or replaces a service.
func (c *Catalog) Put(svc *pricing.Service) error {
	if svc == nil || svc.ID == "" || svc.Model == nil {
		return pricingerr.New(pricingerr.KindInvalidService, "service needs an id and a pricing model")
	}
	if err := svc.Model.Check(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[svc.ID] = svc
	return nil
}

// Rules returns the rule definitions in document order.
func (c *Catalog) Rules() []rules.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]rules.Rule(nil), c.rules...)
}

// RegisterRules adds every catalog rule to the engine.
func (c *Catalog) RegisterRules(e *rules.Engine) ([]string, error) {
	var ids []string
	for _, r := range c.Rules() {
		id, err := e.AddRule(r)
		if err != nil {
			return ids, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Encode writes a catalog document in the given format.
func Encode(doc Document, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return data, nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
