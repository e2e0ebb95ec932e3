package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the geo sighting service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - APIPort: The port of the sighting/query HTTP API.
// - MonitorPort: The port of the health/metrics monitoring server.
// - Redis: Connection settings for the aggregate store and the publish channel.
// - Publish: Event fan-out settings (channel, recent-activity cache).
// - MMDBPath: Path to the IP geolocation database file.
// - CountryCoordPath: Path to the country code to coordinate JSON table.
// - ClusterDistanceMeters: Clustering distance used by radius queries.
type Config struct {
	Env                   string        `mapstructure:"env"`
	APIPort               int           `mapstructure:"api_port"`
	MonitorPort           int           `mapstructure:"monitor_port"`
	Redis                 RedisConfig   `mapstructure:"redis"`
	Publish               PublishConfig `mapstructure:"publish"`
	MMDBPath              string        `mapstructure:"mmdb_path"`
	CountryCoordPath      string        `mapstructure:"country_coord_path"`
	ClusterDistanceMeters float64       `mapstructure:"cluster_distance_meters"`
}

// RedisConfig holds the connection details of the store. The publish channel
// lives in its own logical database, mirroring how map subscribers connect.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PublishDB int    `mapstructure:"publish_db"`
}

// PublishConfig holds the event fan-out settings.
type PublishConfig struct {
	Channel   string `mapstructure:"channel"`
	CacheKey  string `mapstructure:"cache_key"`
	CacheSize int64  `mapstructure:"cache_size"`
}

// MustLoad loads the configuration from defaults, an optional config.yaml and
// MERIDIAN_-prefixed environment variables. It panics on unusable values:
// a service without its geolocation inputs must not start.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("api_port", 8080)
	v.SetDefault("monitor_port", 9090)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 1)
	v.SetDefault("redis.publish_db", 2)
	v.SetDefault("publish.channel", "coordsUpdate")
	v.SetDefault("publish.cache_key", "TEMP_CACHE_LIVE:Map")
	v.SetDefault("publish.cache_size", 100)
	v.SetDefault("mmdb_path", "")
	v.SetDefault("country_coord_path", "")
	v.SetDefault("cluster_distance_meters", 10)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // the file is optional, env vars may carry everything

	v.SetEnvPrefix("MERIDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("failed to parse configuration: " + err.Error())
	}

	if cfg.MMDBPath == "" {
		panic("path to the IP geolocation database is required (MERIDIAN_MMDB_PATH)")
	}
	if cfg.CountryCoordPath == "" {
		panic("path to the country coordinate table is required (MERIDIAN_COUNTRY_COORD_PATH)")
	}
	if cfg.ClusterDistanceMeters <= 0 {
		panic("cluster distance must be a positive number of meters")
	}

	return &cfg
}
