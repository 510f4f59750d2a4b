// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/cardinalhq/chartrunner/internal/debugging"
	"github.com/cardinalhq/chartrunner/internal/healthcheck"
	"github.com/cardinalhq/chartrunner/queryapi"
)

const envPrefix = "CHARTRUNNER"

// Config aggregates configuration for the application.
// Each field is owned by its respective package.
type Config struct {
	API    queryapi.Config    `mapstructure:"api"`
	Health healthcheck.Config `mapstructure:"health"`
	Debug  debugging.Config   `mapstructure:"debug"`
}

func defaults() *Config {
	return &Config{
		API:    queryapi.DefaultConfig(),
		Health: healthcheck.DefaultConfig(),
		Debug:  debugging.DefaultConfig(),
	}
}

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables.
// Environment variables use the prefix "CHARTRUNNER" and the dot character
// in keys is replaced by an underscore. For example, "api.cache_ttl" becomes
// "CHARTRUNNER_API_CACHE_TTL".
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, defaults())
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	// Comma separated lists arrive as a single string from the environment.
	if k := v.GetString("api.api_keys"); k != "" {
		cfg.API.APIKeys = splitList(k)
	}
	if ops := v.GetString("api.default_operators"); ops != "" {
		cfg.API.DefaultOperators = splitList(ops)
	}
	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
