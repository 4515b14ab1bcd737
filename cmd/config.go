package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/urfave/cli"

	"github.com/warpdl/warpscreen/internal/syncchan"
	"github.com/warpdl/warpscreen/pkg/store"
)

// Configuration keys.
const (
	keyHost            = "host"
	keyController      = "controller"
	keyStoreDriver     = "store.driver"
	keyStorePath       = "store.path"
	keyStoreKey        = "store.key"
	keyDisplayListen   = "display.listen"
	keyTick            = "tick"
	keyHeartbeatDelay  = "heartbeat_delay"
	keyLogFormat       = "log.format"
	keyLogFile         = "log.file"
	keyShutdownTimeout = "shutdown_timeout"
)

const (
	DEF_STORE_PATH       = "~/.config/warpscreen"
	DEF_DISPLAY_LISTEN   = "127.0.0.1:8080"
	DEF_CONTROLLER_ADDR  = ":8090"
	DEF_SHUTDOWN_TIMEOUT = 10 * time.Second
	SQLITE_FILE          = "warpscreen.db"
)

// Config is the resolved runtime configuration.
type Config struct {
	Host            string
	Controller      string
	StoreDriver     string
	StorePath       string
	StoreKey        string
	DisplayListen   string
	Tick            time.Duration
	HeartbeatDelay  time.Duration
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration
}

// flagKeys maps global flags onto configuration keys. A flag given on the
// command line wins over the environment and the config file.
var flagKeys = map[string]string{
	"host":       keyHost,
	"controller": keyController,
	"store":      keyStoreDriver,
	"store-path": keyStorePath,
	"display":    keyDisplayListen,
	"log-format": keyLogFormat,
	"log-file":   keyLogFile,
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyStoreDriver, store.DriverDiskv)
	v.SetDefault(keyStorePath, DEF_STORE_PATH)
	v.SetDefault(keyStoreKey, store.DefaultKey)
	v.SetDefault(keyDisplayListen, DEF_DISPLAY_LISTEN)
	v.SetDefault(keyTick, time.Second)
	v.SetDefault(keyHeartbeatDelay, syncchan.DefaultHeartbeatDelay)
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyShutdownTimeout, DEF_SHUTDOWN_TIMEOUT)

	v.SetConfigName("warpscreen") // .yaml is implicit
	v.SetEnvPrefix("WARPSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig loads the config file from file when set, otherwise from the
// search path. A missing file is not an error.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	if override := os.Getenv("WARPSCREEN_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "warpscreen"))
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// loadConfig resolves the configuration for a command.
func loadConfig(ctx *cli.Context) (*Config, error) {
	v := newViper()
	if err := readConfig(v, ctx.GlobalString("config")); err != nil {
		return nil, err
	}
	for flag, key := range flagKeys {
		if ctx.GlobalIsSet(flag) {
			v.Set(key, ctx.GlobalString(flag))
		}
	}
	return configFrom(v)
}

func configFrom(v *viper.Viper) (*Config, error) {
	storePath, err := homedir.Expand(v.GetString(keyStorePath))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", keyStorePath, err)
	}
	logFile, err := homedir.Expand(v.GetString(keyLogFile))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", keyLogFile, err)
	}
	cfg := &Config{
		Host:            v.GetString(keyHost),
		Controller:      v.GetString(keyController),
		StoreDriver:     v.GetString(keyStoreDriver),
		StorePath:       storePath,
		StoreKey:        v.GetString(keyStoreKey),
		DisplayListen:   v.GetString(keyDisplayListen),
		Tick:            v.GetDuration(keyTick),
		HeartbeatDelay:  v.GetDuration(keyHeartbeatDelay),
		LogFormat:       v.GetString(keyLogFormat),
		LogFile:         logFile,
		ShutdownTimeout: v.GetDuration(keyShutdownTimeout),
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unsupported %s %q", keyLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// storeLocation is where the configured driver keeps its data.
func (c *Config) storeLocation() string {
	if c.StoreDriver == store.DriverSQLite {
		return filepath.Join(c.StorePath, SQLITE_FILE)
	}
	return c.StorePath
}

// openStore opens the configured schedule store.
func (c *Config) openStore() (*store.Store, error) {
	if c.StoreDriver == store.DriverSQLite {
		if err := os.MkdirAll(c.StorePath, 0o755); err != nil {
			return nil, err
		}
	}
	b, err := store.Open(c.StoreDriver, c.storeLocation())
	if err != nil {
		return nil, err
	}
	return store.New(b, c.StoreKey, nil), nil
}
