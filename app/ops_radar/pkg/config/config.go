package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/generator"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/insight"
)

// Config 项目配置结构体
type Config struct {
	Generator   GeneratorConfig    `yaml:"generator"`
	Insight     insight.Thresholds `yaml:"insight"`
	LLM         LLMConfig          `yaml:"llm"`
	Log         LogConfig          `yaml:"log"`
	Concurrency ConcurrencyConfig  `yaml:"concurrency"`
	Refresh     RefreshConfig      `yaml:"refresh"`
	DB          DBConfig           `yaml:"db"`
	Redis       RedisConfig        `yaml:"redis"`
}

// GeneratorConfig 数据生成配置，Seed 为 0 时每次运行随机取种子
type GeneratorConfig struct {
	Days int   `yaml:"days"`
	Seed int64 `yaml:"seed"`
}

// LLMConfig LLM 相关配置，未配置 Model 时不生成摘要
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Enabled 是否启用 LLM 摘要
func (c LLMConfig) Enabled() bool {
	return c.Model != "" && c.APIKey != ""
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// Source 直接给出 DSN 时优先使用
	Source string `yaml:"source"`
}

// DSN 按驱动拼接连接串
func (c DBConfig) DSN() string {
	if c.Source != "" {
		return c.Source
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Name)
	case "sqlite":
		return c.Name
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	}
}

// Enabled 是否配置了归档库
func (c DBConfig) Enabled() bool {
	return c.Driver != ""
}

// RedisConfig 快照发布配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// RefreshConfig 定时刷新配置
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Generator:   GeneratorConfig{Days: generator.DefaultDays},
		Insight:     insight.DefaultThresholds(),
		Log:         LogConfig{Level: "info"},
		Concurrency: ConcurrencyConfig{QPS: 1, RPM: 20},
		Refresh:     RefreshConfig{Interval: 30 * time.Second},
		Redis:       RedisConfig{Channel: "ops_radar:snapshots"},
	}
}

// LoadConfig 从指定路径加载配置，未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Generator.Days < 0 {
		return nil, fmt.Errorf("generator.days must not be negative, got %d", cfg.Generator.Days)
	}

	return cfg, nil
}
