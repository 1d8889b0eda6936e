package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeHTTP      = "http"
	TypeGCPPubSub = "gcppubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one entry of the publishers file. Only the block matching
// Type is read.
type PublisherConfig struct {
	ID        string                    `json:"id" yaml:"id"`
	Type      string                    `json:"type" yaml:"type"`
	Enabled   *bool                     `json:"enabled" yaml:"enabled"`
	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcppubsub" yaml:"gcppubsub"`
}

// AWSCredentials optionally pins static keys instead of the default provider chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// GCPPubSubPublisherConfig holds Google Cloud Pub/Sub settings.
type GCPPubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// sinkSettings is implemented by every type-specific block.
type sinkSettings interface {
	normalize()
	missing() []string
}

func (c *SQSPublisherConfig) normalize() {
	c.QueueURL = strings.TrimSpace(c.QueueURL)
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
}

func (c *SQSPublisherConfig) missing() []string {
	return requireFields("sqs", [2]string{"uri", c.QueueURL}, [2]string{"region", c.Region})
}

func (c *SNSPublisherConfig) normalize() {
	c.TopicARN = strings.TrimSpace(c.TopicARN)
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
}

func (c *SNSPublisherConfig) missing() []string {
	return requireFields("sns", [2]string{"topic_arn", c.TopicARN}, [2]string{"region", c.Region})
}

func (c *GCPPubSubPublisherConfig) normalize() {
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Topic = strings.TrimSpace(c.Topic)
	c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
}

func (c *GCPPubSubPublisherConfig) missing() []string {
	return requireFields("gcppubsub", [2]string{"project_id", c.ProjectID}, [2]string{"topic", c.Topic})
}

// normalize fills in the method and timeout and drops blank headers.
func (c *HTTPPublisherConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}

	var headers map[string]string
	for k, v := range c.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string, len(c.Headers))
		}
		headers[k] = v
	}
	c.Headers = headers
}

func (c *HTTPPublisherConfig) missing() []string {
	return requireFields("http", [2]string{"url", c.URL})
}

// requireFields names the empty fields as block.field. Each pair is {field, value}.
func requireFields(block string, pairs ...[2]string) []string {
	var out []string
	for _, p := range pairs {
		if p[1] == "" {
			out = append(out, block+"."+p[0])
		}
	}
	return out
}

// settings returns the block selected by Type. ok is false for unknown types
// and for a known type whose block is absent.
func (cfg *PublisherConfig) settings() (s sinkSettings, known, ok bool) {
	switch cfg.Type {
	case TypeSQS:
		return cfg.SQS, true, cfg.SQS != nil
	case TypeSNS:
		return cfg.SNS, true, cfg.SNS != nil
	case TypeGCPPubSub:
		return cfg.GCPPubSub, true, cfg.GCPPubSub != nil
	case TypeHTTP:
		return cfg.HTTP, true, cfg.HTTP != nil
	}
	return nil, false, false
}

// normalize trims the entry in place and defaults Enabled to true.
func (cfg *PublisherConfig) normalize() {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}
	if s, _, ok := cfg.settings(); ok {
		s.normalize()
	}
}

// validate checks the id, the type and the fields its block requires. Types
// without a built-in block are left to the factory registry.
func (cfg *PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	}
	s, known, ok := cfg.settings()
	if !known {
		return nil
	}
	if !ok {
		return fmt.Errorf("%s config required for publisher %q", cfg.Type, cfg.ID)
	}
	if missing := s.missing(); len(missing) > 0 {
		return fmt.Errorf("%s required for publisher %q", strings.Join(missing, ", "), cfg.ID)
	}
	return nil
}

// IsEnabled reports the enabled flag, defaulting to true.
func (cfg PublisherConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ConfigRegistry is the validated content of a publishers file, in file order.
type ConfigRegistry struct {
	entries []PublisherConfig
}

// LoadRegistry reads a YAML or JSON publishers file. Every entry is normalized and
// validated; ids must be unique.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	entries, err := decodePublishers(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]int, len(entries))
	for i := range entries {
		cfg := &entries[i]
		cfg.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if first, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: id %q already used by publishers[%d]", i, cfg.ID, first)
		}
		seen[cfg.ID] = i
	}

	return &ConfigRegistry{entries: entries}, nil
}

// decodePublishers picks a decoder by extension; with no extension every decoder
// is tried. The last decode error is returned when none succeeds.
func decodePublishers(data []byte, ext string) ([]PublisherConfig, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		exts []string
		fn   func([]byte, any) error
	}{
		{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && !slices.Contains(d.exts, ext) {
			continue
		}
		var file struct {
			Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
		}
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s publishers: %w", d.name, err)
			continue
		}
		return file.Publishers, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("publishers file extension %q not supported (expected .yaml, .yml or .json)", ext)
	}
	return nil, fmt.Errorf("parse publishers file: %w", lastErr)
}

// Enabled returns the enabled entries in file order.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(r.entries))
	for _, cfg := range r.entries {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}
