package config

import (
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	ChainId int64  `mapstructure:"chain_id"` // 链ID
	RpcUrl  string `mapstructure:"rpc_url"`  // RPC节点URL
}

// SyncConfig 链上事件同步配置
type SyncConfig struct {
	ScanInterval    int  `mapstructure:"scan_interval"`    // 扫描周期（秒）
	MaxRange        int  `mapstructure:"max_range"`        // 单次日志查询的最大区块跨度
	MinRange        int  `mapstructure:"min_range"`        // 限流收缩后的最小区块跨度
	MaxRetries      int  `mapstructure:"max_retries"`      // 单轮扫描内连续限流的最大重试次数
	BaseBackoff     int  `mapstructure:"base_backoff"`     // 限流退避基数（秒）
	WatchInterval   int  `mapstructure:"watch_interval"`   // 实时监听轮询间隔（毫秒）
	BackfillEnabled bool `mapstructure:"backfill_enabled"` // 是否启用跳过事件回补任务
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// ScanIntervalDuration 扫描周期
func (s SyncConfig) ScanIntervalDuration() time.Duration {
	return time.Duration(s.ScanInterval) * time.Second
}

// BaseBackoffDuration 限流退避基数
func (s SyncConfig) BaseBackoffDuration() time.Duration {
	return time.Duration(s.BaseBackoff) * time.Second
}

// WatchIntervalDuration 实时监听轮询间隔
func (s SyncConfig) WatchIntervalDuration() time.Duration {
	return time.Duration(s.WatchInterval) * time.Millisecond
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cis")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "circle_integration")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("sync.scan_interval", 60)
	viper.SetDefault("sync.max_range", 2000)
	viper.SetDefault("sync.min_range", 250)
	viper.SetDefault("sync.max_retries", 5)
	viper.SetDefault("sync.base_backoff", 2)
	viper.SetDefault("sync.watch_interval", 1000)
	viper.SetDefault("sync.backfill_enabled", true)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
