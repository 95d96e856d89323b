package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Google   GoogleConfig   `yaml:"google"`
	Security SecurityConfig `yaml:"security"`
	Game     GameConfig     `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GoogleConfig Google Maps API 配置
type GoogleConfig struct {
	APIKey string `yaml:"api_key"` // 为空时读取环境变量 GOOGLE_MAPS_API_KEY
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GameConfig 游戏配置
type GameConfig struct {
	ResultDelay   int `yaml:"result_delay"`   // 回合结果展示时长（秒）
	CleanupDelay  int `yaml:"cleanup_delay"`  // 游戏结束后房间保留时长（秒）
	LocateTimeout int `yaml:"locate_timeout"` // 单个选点请求超时（秒）
}

// ResultDelayDuration 返回回合结果展示时长
func (c *GameConfig) ResultDelayDuration() time.Duration {
	return time.Duration(c.ResultDelay) * time.Second
}

// CleanupDelayDuration 返回房间保留时长
func (c *GameConfig) CleanupDelayDuration() time.Duration {
	return time.Duration(c.CleanupDelay) * time.Second
}

// LocateTimeoutDuration 返回选点请求超时时长
func (c *GameConfig) LocateTimeoutDuration() time.Duration {
	return time.Duration(c.LocateTimeout) * time.Second
}

// ResolveAPIKey 返回 Google Maps API Key，配置缺省时回退到环境变量
func (c *GoogleConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("GOOGLE_MAPS_API_KEY")
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = 1024
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.ResultDelay == 0 {
		c.Game.ResultDelay = 15
	}
	if c.Game.CleanupDelay == 0 {
		c.Game.CleanupDelay = 60
	}
	if c.Game.LocateTimeout == 0 {
		c.Game.LocateTimeout = 30
	}
}
