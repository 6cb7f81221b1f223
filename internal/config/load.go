package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var defineFlagsOnce sync.Once

// Load loads configuration from multiple sources with the following precedence:
// 1. Explicit overrides (v.Set) – used only for secrets resolved at load time
// 2. Command line flags
// 3. Environment variables
// 4. Config file
// 5. Default values
func Load() (*Config, error) {
	v := viper.New()

	// Defaults (lowest priority)
	setDefaults(v)

	// --- Flags ---
	defineFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}

	// --- Config file ---
	cfgPath, _ := pflag.CommandLine.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("cql-rowpatch")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/cql-rowpatch/")
		v.AddConfigPath("$HOME/.cql-rowpatch")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case
	// Env vars: CQLRP_CLUSTER_PASSWORD_FILE
	v.SetEnvPrefix("CQLRP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Flags binding (highest normal priority) ---
	bindChangedFlagsToViper(v)

	// --- Password from file (explicit override) ---
	if v.GetString("cluster.password") == "" && v.GetString("cluster.password_file") != "" {
		pwd, err := readPasswordFile(v.GetString("cluster.password_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read cluster password file: %w", err)
		}
		v.Set("cluster.password", pwd)
	}

	// --- Interactive password prompt (explicit override) ---
	if v.GetBool("cluster.password_prompt") && v.GetString("cluster.password") == "" {
		pwd, err := promptPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to read password from prompt: %w", err)
		}
		v.Set("cluster.password", pwd)
	}

	// --- Unmarshal (strict) ---
	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cluster.hosts", []string{"localhost"})
	v.SetDefault("cluster.port", 9042)
	v.SetDefault("cluster.keyspace", "")
	v.SetDefault("cluster.username", "")
	v.SetDefault("cluster.password", "")
	v.SetDefault("cluster.password_file", "")
	v.SetDefault("cluster.password_prompt", false)
	v.SetDefault("cluster.timeout", 10*time.Second)
	v.SetDefault("cluster.connect_timeout", 5*time.Second)
	v.SetDefault("cluster.prepend_reversed", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func defineFlags() {
	defineFlagsOnce.Do(func() {
		pflag.String("config", "", "Path to config file")

		pflag.String("cluster.hosts", "", "Comma-separated Cassandra contact points")
		pflag.Int("cluster.port", 0, "Cassandra native protocol port")
		pflag.String("cluster.keyspace", "", "Default keyspace")
		pflag.String("cluster.username", "", "Cluster username")
		pflag.String("cluster.password", "", "Cluster password")
		pflag.String("cluster.password_file", "", "Path to file containing cluster password (use @- for stdin)")
		pflag.Bool("cluster.password_prompt", false, "Prompt for cluster password securely")
		pflag.Duration("cluster.timeout", 0, "Per-statement timeout (e.g. 10s)")
		pflag.Duration("cluster.connect_timeout", 0, "Connection timeout (e.g. 5s)")
		pflag.Bool("cluster.prepend_reversed", false, "Declare that the cluster reverses multi-element list prepends")

		pflag.String("logging.level", "", "Log level (debug, info, warn, error)")
		pflag.String("logging.format", "", "Log format (json, text)")
	})
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(v *viper.Viper) {
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := pflag.CommandLine.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := pflag.CommandLine.GetInt(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := pflag.CommandLine.GetBool(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := pflag.CommandLine.GetDuration(f.Name)
			v.Set(f.Name, val)
		}
	})
}

func promptPassword() (string, error) {
	fmt.Print("Enter cluster password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

func readPasswordFile(path string) (string, error) {
	var data []byte
	var err error

	if path == "@-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// stringToStringSliceHookFunc lets env vars and flags supply list values as
// separator-joined strings.
func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}
