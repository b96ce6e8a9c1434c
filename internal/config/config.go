package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 环境变量，优先级高于 config.toml
const (
	EnvPort    = "EIGHTYSIX_PORT"
	EnvDataDir = "EIGHTYSIX_DATA_DIR"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Business BusinessConfig `toml:"business"`
	Excel    ExcelConfig    `toml:"excel"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `toml:"port"`
	DevMode     bool     `toml:"dev_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir         string `toml:"data_dir"`
	HistoryDB       string `toml:"history_db"`
	DefaultSaveName string `toml:"default_save_name"`
}

// BusinessConfig 新门店的初始资金设置
type BusinessConfig struct {
	StartingCash    float64 `toml:"starting_cash"`
	CreditLineLimit float64 `toml:"credit_line_limit"`
	CreditLineRate  float64 `toml:"credit_line_rate"` // 年化
}

// ExcelConfig Excel 导出相关配置
type ExcelConfig struct {
	FilePrefix string `toml:"file_prefix"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20286,
			DevMode:     false,
			CORSOrigins: []string{"*"},
		},
		Data: DataConfig{
			DataDir:         "data",
			HistoryDB:       "history.db",
			DefaultSaveName: "My Restaurant",
		},
		Business: BusinessConfig{
			StartingCash:    50000,
			CreditLineLimit: 25000,
			CreditLineRate:  0.12,
		},
		Excel: ExcelConfig{
			FilePrefix: "86d",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrCwd() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(exeDirOrCwd())
}

// LoadFrom 从指定目录加载 .env 与 config.toml，文件不存在时使用默认值
func LoadFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	cfg := DefaultConfig()
	configPath := filepath.Join(dir, "config.toml")
	info := LoadConfigInfo{Path: configPath}

	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, info, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, info, fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.Data.DataDir = v
	}

	return cfg, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	cfg, _, err := LoadConfigWithInfo()
	return cfg, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(cfg *AppConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDirOrCwd(), "config.toml"), data, 0644)
}

// ResolveDataDir 相对路径以可执行文件目录为基准
func ResolveDataDir(cfg *AppConfig) string {
	if filepath.IsAbs(cfg.Data.DataDir) {
		return cfg.Data.DataDir
	}
	return filepath.Join(exeDirOrCwd(), cfg.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := ResolveDataDir(cfg)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"saves", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
