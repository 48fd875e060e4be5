// Package config implements the four-level configuration hierarchy used by
// cmd/spikenetd: built-in defaults, an optional YAML file, environment
// variable overrides, then explicit CLI flag overrides applied last by the
// caller.
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the spikenetctl inspection surface.
type ServerConfig struct {
	ListenAddr       string `yaml:"listenAddr"`
	LogLevel         string `yaml:"logLevel"`
	StrictAssertions bool   `yaml:"strictAssertions"`
}

// StorageConfig configures the object store's backing durability.
type StorageConfig struct {
	DataPath                   string        `yaml:"dataPath"`
	CacheCapacity              int           `yaml:"cacheCapacity"`
	Compress                   bool          `yaml:"compress"`
	WALEnabled                 bool          `yaml:"walEnabled"`
	FsyncPolicy                string        `yaml:"fsyncPolicy"`
	FsyncInterval              time.Duration `yaml:"fsyncInterval"`
	ChecksumValidationInterval time.Duration `yaml:"checksumValidationInterval"`
	StartupRepair              bool          `yaml:"startupRepair"`
}

// SchedulerConfig configures the spike scheduler's time wheel and worker
// pool fan-out.
type SchedulerConfig struct {
	NumSlots        int        `yaml:"numSlots"`
	DtMS            int64      `yaml:"dtMs"`
	DeliveryThreads int        `yaml:"deliveryThreads"`
	RealTime        bool       `yaml:"realTime"`
	STDP            STDPConfig `yaml:"stdp"`
}

// STDPConfig holds the four plasticity constants.
type STDPConfig struct {
	APlus    float64 `yaml:"aPlus"`
	AMinus   float64 `yaml:"aMinus"`
	TauPlus  float64 `yaml:"tauPlus"`
	TauMinus float64 `yaml:"tauMinus"`
}

// WorkerPoolConfig configures the fixed-size delivery worker pool.
type WorkerPoolConfig struct {
	Workers       int `yaml:"workers"`
	QueueCapacity int `yaml:"queueCapacity"`
}

// StrategyConfig configures the default pattern-update strategy new
// neurons are constructed with, unless overridden per-neuron.
type StrategyConfig struct {
	Name                string             `yaml:"name"`
	MaxPatterns         int                `yaml:"maxPatterns"`
	SimilarityThreshold float64            `yaml:"similarityThreshold"`
	RealParams          map[string]float64 `yaml:"realParams"`
	IntParams           map[string]int     `yaml:"intParams"`
}

// DaemonConfig configures the ambient background daemons: the object
// store's periodic flush cadence. The checksum-validation cadence is
// StorageConfig.ChecksumValidationInterval.
type DaemonConfig struct {
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// Config is the root configuration object for spikenetd.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Storage   StorageConfig    `yaml:"storage"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Worker    WorkerPoolConfig `yaml:"worker"`
	Strategy  StrategyConfig   `yaml:"strategy"`
	Daemons   DaemonConfig     `yaml:"daemons"`
}

// DefaultConfig returns a Config populated with typical runtime defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:       ":7070",
			LogLevel:         "info",
			StrictAssertions: false,
		},
		Storage: StorageConfig{
			DataPath:                   "./data",
			CacheCapacity:              10000,
			Compress:                   true,
			WALEnabled:                 true,
			FsyncPolicy:                "interval",
			FsyncInterval:              1 * time.Second,
			ChecksumValidationInterval: 5 * time.Minute,
			StartupRepair:              true,
		},
		Scheduler: SchedulerConfig{
			NumSlots:        1000,
			DtMS:            1,
			DeliveryThreads: 8,
			RealTime:        false,
			STDP: STDPConfig{
				APlus:    0.01,
				AMinus:   0.012,
				TauPlus:  20,
				TauMinus: 20,
			},
		},
		Worker: WorkerPoolConfig{
			Workers:       16,
			QueueCapacity: 4096,
		},
		Strategy: StrategyConfig{
			Name:                "hybrid",
			MaxPatterns:         16,
			SimilarityThreshold: 0.75,
		},
		Daemons: DaemonConfig{
			FlushInterval: 1 * time.Minute,
		},
	}
}

// FromFile reads a YAML configuration file and merges it on top of the
// built-in defaults. Fields absent from the file retain their defaults.
func FromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies environment variable overrides to cfg (a new default
// Config if cfg is nil), all prefixed SPIKENET_.
func FromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	setEnvStr("SPIKENET_LISTEN_ADDR", &cfg.Server.ListenAddr)
	setEnvStr("SPIKENET_LOG_LEVEL", &cfg.Server.LogLevel)
	setEnvBool("SPIKENET_STRICT_ASSERTIONS", &cfg.Server.StrictAssertions)

	setEnvStr("SPIKENET_DATA_PATH", &cfg.Storage.DataPath)
	setEnvInt("SPIKENET_CACHE_CAPACITY", &cfg.Storage.CacheCapacity)
	setEnvBool("SPIKENET_COMPRESS", &cfg.Storage.Compress)
	setEnvBool("SPIKENET_WAL_ENABLED", &cfg.Storage.WALEnabled)
	setEnvStr("SPIKENET_FSYNC_POLICY", &cfg.Storage.FsyncPolicy)
	setEnvDuration("SPIKENET_FSYNC_INTERVAL", &cfg.Storage.FsyncInterval)
	setEnvDuration("SPIKENET_CHECKSUM_VALIDATION_INTERVAL", &cfg.Storage.ChecksumValidationInterval)
	setEnvBool("SPIKENET_STARTUP_REPAIR", &cfg.Storage.StartupRepair)

	setEnvInt("SPIKENET_NUM_SLOTS", &cfg.Scheduler.NumSlots)
	setEnvInt64("SPIKENET_DT_MS", &cfg.Scheduler.DtMS)
	setEnvInt("SPIKENET_DELIVERY_THREADS", &cfg.Scheduler.DeliveryThreads)
	setEnvBool("SPIKENET_REAL_TIME", &cfg.Scheduler.RealTime)
	setEnvFloat("SPIKENET_STDP_A_PLUS", &cfg.Scheduler.STDP.APlus)
	setEnvFloat("SPIKENET_STDP_A_MINUS", &cfg.Scheduler.STDP.AMinus)
	setEnvFloat("SPIKENET_STDP_TAU_PLUS", &cfg.Scheduler.STDP.TauPlus)
	setEnvFloat("SPIKENET_STDP_TAU_MINUS", &cfg.Scheduler.STDP.TauMinus)

	setEnvInt("SPIKENET_WORKERS", &cfg.Worker.Workers)
	setEnvInt("SPIKENET_QUEUE_CAPACITY", &cfg.Worker.QueueCapacity)

	setEnvStr("SPIKENET_STRATEGY_NAME", &cfg.Strategy.Name)
	setEnvInt("SPIKENET_STRATEGY_MAX_PATTERNS", &cfg.Strategy.MaxPatterns)
	setEnvFloat("SPIKENET_STRATEGY_SIMILARITY_THRESHOLD", &cfg.Strategy.SimilarityThreshold)

	setEnvDuration("SPIKENET_FLUSH_INTERVAL", &cfg.Daemons.FlushInterval)

	return cfg
}

// Load implements the configuration hierarchy's first three levels:
// defaults, optional YAML overlay, then environment overrides. The caller
// applies CLI flag overrides afterward via ApplyCLIOverrides.
func Load(configPath string) (*Config, error) {
	var cfg *Config
	var err error

	if configPath != "" {
		cfg, err = FromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = DefaultConfig()
	}

	return FromEnv(cfg), nil
}

// Validate performs structural validation, returning a descriptive error
// for the first invalid field encountered.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listenAddr must not be empty")
	}
	if c.Storage.DataPath == "" {
		return fmt.Errorf("storage.dataPath must not be empty")
	}
	if c.Storage.CacheCapacity < 1 {
		return fmt.Errorf("storage.cacheCapacity must be >= 1, got %d", c.Storage.CacheCapacity)
	}
	policy := strings.ToLower(strings.TrimSpace(c.Storage.FsyncPolicy))
	if policy != "always" && policy != "interval" && policy != "off" {
		return fmt.Errorf("storage.fsyncPolicy must be one of always|interval|off")
	}
	c.Storage.FsyncPolicy = policy
	if policy == "interval" && c.Storage.FsyncInterval <= 0 {
		return fmt.Errorf("storage.fsyncInterval must be > 0 when storage.fsyncPolicy is interval")
	}

	if c.Scheduler.NumSlots < 1 {
		return fmt.Errorf("scheduler.numSlots must be >= 1, got %d", c.Scheduler.NumSlots)
	}
	if c.Scheduler.DtMS < 1 {
		return fmt.Errorf("scheduler.dtMs must be >= 1, got %d", c.Scheduler.DtMS)
	}
	if c.Scheduler.DeliveryThreads < 1 {
		return fmt.Errorf("scheduler.deliveryThreads must be >= 1, got %d", c.Scheduler.DeliveryThreads)
	}

	if c.Worker.Workers < 1 {
		return fmt.Errorf("worker.workers must be >= 1, got %d", c.Worker.Workers)
	}
	if c.Worker.QueueCapacity < 1 {
		return fmt.Errorf("worker.queueCapacity must be >= 1, got %d", c.Worker.QueueCapacity)
	}

	if c.Strategy.MaxPatterns < 1 {
		return fmt.Errorf("strategy.maxPatterns must be >= 1, got %d", c.Strategy.MaxPatterns)
	}

	return nil
}

// CLIOverrides carries optional values set via command-line flags. Pointer
// fields are nil when the flag was not explicitly provided, distinguishing
// "not set" from the zero value.
type CLIOverrides struct {
	ConfigPath       *string
	ListenAddr       *string
	DataPath         *string
	CacheCapacity    *int
	Compress         *bool
	NumSlots         *int
	DtMS             *int64
	DeliveryThreads  *int
	RealTime         *bool
	Workers          *int
	StrategyName     *string
	StrictAssertions *bool
}

// ApplyCLIOverrides overwrites any field whose corresponding override
// pointer is non-nil.
func (c *Config) ApplyCLIOverrides(o *CLIOverrides) {
	if o == nil {
		return
	}
	if o.ListenAddr != nil {
		c.Server.ListenAddr = *o.ListenAddr
	}
	if o.DataPath != nil {
		c.Storage.DataPath = *o.DataPath
	}
	if o.CacheCapacity != nil {
		c.Storage.CacheCapacity = *o.CacheCapacity
	}
	if o.Compress != nil {
		c.Storage.Compress = *o.Compress
	}
	if o.NumSlots != nil {
		c.Scheduler.NumSlots = *o.NumSlots
	}
	if o.DtMS != nil {
		c.Scheduler.DtMS = *o.DtMS
	}
	if o.DeliveryThreads != nil {
		c.Scheduler.DeliveryThreads = *o.DeliveryThreads
	}
	if o.RealTime != nil {
		c.Scheduler.RealTime = *o.RealTime
	}
	if o.Workers != nil {
		c.Worker.Workers = *o.Workers
	}
	if o.StrategyName != nil {
		c.Strategy.Name = *o.StrategyName
	}
	if o.StrictAssertions != nil {
		c.Server.StrictAssertions = *o.StrictAssertions
	}
}

// PrintBanner prints the spikenetd startup banner to stdout.
func PrintBanner() {
	banner := `
  ___       _ _        _   _      _
 / __| _ __(_) |_____  | \ | |___| |_
 \__ \| '_ \ | / / -_) |  \| / -_)  _|
 |___/| .__/_|_\_\___| |_|\_\___|\__|
      |_|
    spiking neural network runtime
    ─────────────────────────────────
`
	fmt.Print(banner)
}

// WaitForShutdown blocks until SIGINT/SIGTERM arrives or ctx is otherwise
// cancelled, then calls cancel.
func WaitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, initiating shutdown...", sig)
		cancel()
	case <-ctx.Done():
	}
}

func setEnvStr(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setEnvBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

func setEnvInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setEnvInt64(key string, target *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}

func setEnvFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func setEnvDuration(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}
