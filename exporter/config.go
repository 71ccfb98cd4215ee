package exporter

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListenIP   = "127.0.0.1"
	DefaultListenPort = 9999

	// DefaultCacheLife is the cache window applied when the config
	// turns caching on without choosing a cache_life.
	DefaultCacheLife = 60 * time.Second
)

// Duration wraps time.Duration so config windows can be spelled the
// way time.ParseDuration accepts, e.g. "60s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the on-disk configuration of an exporter process.
//
/* The yaml layout is:

listen_ip: 127.0.0.1
listen_port: 9999
labels:
  zone: eu-1
cache: true
cache_life: 60s
procstats_interval: 15s
metrics:
  - name: requests_total
    type: counter
    help: Total requests.
    labels:
      method: GET
*/
type Config struct {
	ListenIP   string `yaml:"listen_ip,omitempty"`
	ListenPort int    `yaml:"listen_port,omitempty"`

	// Labels is attached to every metric the exporter creates.
	Labels Labels `yaml:"labels,omitempty"`

	// Cache turns the render cache on with DefaultCacheLife unless
	// CacheLife picks a window.
	Cache bool `yaml:"cache,omitempty"`

	// CacheLife enables the render cache when positive, whether or not
	// Cache is set. Zero defers to Cache.
	CacheLife Duration `yaml:"cache_life,omitempty"`

	// ProcStatsInterval enables the self-process sampler when
	// positive. Zero leaves it off.
	ProcStatsInterval Duration `yaml:"procstats_interval,omitempty"`

	// Metrics are registered in order at construction time.
	Metrics []MetricOpts `yaml:"metrics,omitempty"`
}

// LoadConfig reads and parses a yaml config file, applying listen
// defaults for fields the file leaves unset.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	cfg.applyDefaults()
	glog.Infof("Read config file: %s", path)
	return cfg, nil
}

// DefaultConfig returns the configuration used when no config file is
// given.
func DefaultConfig() *Config {
	cfg := new(Config)
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ListenIP == "" {
		c.ListenIP = DefaultListenIP
	}
	if c.ListenPort == 0 {
		c.ListenPort = DefaultListenPort
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ListenIP, strconv.Itoa(c.ListenPort))
}

// CacheTTL returns the configured cache window: an explicit cache_life
// wins, the cache toggle alone means DefaultCacheLife, and zero means
// caching stays off.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheLife > 0 {
		return time.Duration(c.CacheLife)
	}
	if c.Cache {
		return DefaultCacheLife
	}
	return 0
}

// NewFromConfig builds an Exporter carrying the config's default labels
// and registers every configured metric. A bad metric entry is logged
// and skipped so the rest of the config still comes up; the collected
// failures are returned as a MultiError alongside the usable exporter.
func NewFromConfig(cfg *Config) (*Exporter, error) {
	exp, err := New(cfg.Labels)
	if err != nil {
		return nil, err
	}
	errs := MultiError{}
	for _, opts := range cfg.Metrics {
		if _, err := exp.Register(opts); err != nil {
			glog.Warningf("Skipping configured metric %q: %v", opts.Name, err)
			errs.Append(err)
			continue
		}
		glog.Infof("Adding metric: %s", opts.Name)
	}
	return exp, errs.ErrorOrNil()
}
