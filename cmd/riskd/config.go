package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config riskd 配置
type Config struct {
	NodeID int64 `mapstructure:"node_id"`

	NATS struct {
		URL     string        `mapstructure:"url"`
		Queue   string        `mapstructure:"queue"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"nats"`

	Redis struct {
		Addr     string        `mapstructure:"addr"`
		QuoteTTL time.Duration `mapstructure:"quote_ttl"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`

	// Seed 非 0 时所有模拟使用固定种子 (回归测试环境用)
	Seed int64 `mapstructure:"seed"`
}

// loadConfig 读取配置
// 优先级: 环境变量 RISKD_* > 配置文件 > 默认值
// 例如 RISKD_REDIS_ADDR=redis:6379；空字符串表示禁用该组件
// 列表型环境变量用逗号分隔，如 RISKD_KAFKA_BROKERS=k1:9092,k2:9092
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("node_id", 1)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.queue", "riskd")
	v.SetDefault("nats.timeout", "30s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.quote_ttl", "10m")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.group_id", "riskd")
	v.SetDefault("seed", 0)

	v.SetEnvPrefix("RISKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
