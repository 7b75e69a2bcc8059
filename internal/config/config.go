package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"leadreport/internal/model"
	"leadreport/internal/parser"
	"leadreport/internal/report"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// 环境变量
const (
	EnvSourcePath  = "LEADREPORT_SOURCE_PATH"
	EnvSourceSheet = "LEADREPORT_SOURCE_SHEET"
	EnvOutputPath  = "LEADREPORT_OUTPUT_PATH"
	EnvDataDir     = "LEADREPORT_DATA_DIR"
)

// FileName 配置文件名
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Source   SourceConfig   `toml:"source"`
	Output   OutputConfig   `toml:"output"`
	Analysis AnalysisConfig `toml:"analysis"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// SourceConfig 申込数据源
type SourceConfig struct {
	Path  string `toml:"path"`
	Sheet string `toml:"sheet"` // 为空时按表头自动识别
}

// OutputConfig 报表输出
type OutputConfig struct {
	// Path 为空时：xlsx 源写回源文件，csv 源写到 data/exports 下
	Path string `toml:"path"`
}

// ColumnConfig 一条列定位规则
type ColumnConfig struct {
	Field   string   `toml:"field"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude,omitempty"`
}

// SheetsConfig 报表 sheet 名
type SheetsConfig struct {
	Attribute  string `toml:"attribute"`
	Conversion string `toml:"conversion"`
	Monthly    string `toml:"monthly"`
	Event      string `toml:"event"`
	Staff      string `toml:"staff"`
	Route      string `toml:"route"`
}

// AnalysisConfig 分析配置
type AnalysisConfig struct {
	ConversionValues []string       `toml:"conversion_values"`
	ExecutionValues  []string       `toml:"execution_values"`
	StaffMinSamples  int            `toml:"staff_min_samples"`
	RouteMinSamples  int            `toml:"route_min_samples"`
	Columns          []ColumnConfig `toml:"columns"`
	Sheets           SheetsConfig   `toml:"sheets"`
}

// ScheduleConfig 每日定时运行
type ScheduleConfig struct {
	Enabled bool `toml:"enabled"`
	Hour    int  `toml:"hour"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	names := report.DefaultSheetNames()
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Analysis: AnalysisConfig{
			ConversionValues: []string{"成約", "GH成約（クロスセル/99万）"},
			ExecutionValues:  []string{"実施済み", "実施", "再アポ実施済み"},
			StaffMinSamples:  10,
			RouteMinSamples:  8,
			Columns:          columnConfigs(parser.DefaultColumnRules()),
			Sheets: SheetsConfig{
				Attribute:  names.Attribute,
				Conversion: names.Conversion,
				Monthly:    names.Monthly,
				Event:      names.Event,
				Staff:      names.Staff,
				Route:      names.Route,
			},
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Hour:    9,
		},
	}
}

func columnConfigs(rules []model.ColumnRule) []ColumnConfig {
	out := make([]ColumnConfig, 0, len(rules))
	for _, r := range rules {
		out = append(out, ColumnConfig{Field: string(r.Field), Include: r.Include, Exclude: r.Exclude})
	}
	return out
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
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

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, FileName)
}

// LoadFrom 从指定路径加载配置
//
// 文件不存在时使用默认配置。加载顺序：默认值 → config.toml → .env → 环境变量。
func LoadFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		// 列表项以文件为准，未写时再补默认值
		config.Analysis.Columns = nil
		config.Analysis.ConversionValues = nil
		config.Analysis.ExecutionValues = nil
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, configPath, err)
		}
		fillListDefaults(config)
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	loadDotEnv(filepath.Dir(configPath))
	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

func fillListDefaults(config *AppConfig) {
	def := DefaultConfig().Analysis
	if len(config.Analysis.Columns) == 0 {
		config.Analysis.Columns = def.Columns
	}
	if len(config.Analysis.ConversionValues) == 0 {
		config.Analysis.ConversionValues = def.ConversionValues
	}
	if len(config.Analysis.ExecutionValues) == 0 {
		config.Analysis.ExecutionValues = def.ExecutionValues
	}
}

// loadDotEnv 读取配置目录与当前目录下的 .env；已存在的环境变量不被覆盖
func loadDotEnv(dir string) {
	for _, p := range []string{filepath.Join(dir, ".env"), ".env"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// 环境变量覆盖（用于定时任务 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSourcePath)); v != "" {
		config.Source.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSourceSheet)); v != "" {
		config.Source.Sheet = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputPath)); v != "" {
		config.Output.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		config.Data.DataDir = v
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port="+strconv.Itoa(c.Server.Port))
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		problems = append(problems, "schedule.hour="+strconv.Itoa(c.Schedule.Hour))
	}
	if c.Analysis.StaffMinSamples < 0 {
		problems = append(problems, "analysis.staff_min_samples must be >= 0")
	}
	if c.Analysis.RouteMinSamples < 0 {
		problems = append(problems, "analysis.route_min_samples must be >= 0")
	}
	seen := make(map[string]bool)
	for _, col := range c.Analysis.Columns {
		f := model.Field(col.Field)
		if !model.IsKnownField(f) {
			problems = append(problems, "unknown column field "+col.Field)
			continue
		}
		if seen[col.Field] {
			problems = append(problems, "duplicate column field "+col.Field)
		}
		seen[col.Field] = true
		if len(col.Include) == 0 {
			problems = append(problems, "column "+col.Field+" has no include keyword")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AnalysisSettings 构造一次运行使用的分析配置
//
// 配置文件只写了部分列规则时，其余字段沿用默认规则。
func (c *AppConfig) AnalysisSettings() *model.AnalysisConfig {
	configured := make(map[model.Field]model.ColumnRule)
	for _, col := range c.Analysis.Columns {
		configured[model.Field(col.Field)] = model.ColumnRule{
			Field:   model.Field(col.Field),
			Include: append([]string(nil), col.Include...),
			Exclude: append([]string(nil), col.Exclude...),
		}
	}
	rules := make([]model.ColumnRule, 0, len(model.AllFields))
	for _, def := range parser.DefaultColumnRules() {
		if r, ok := configured[def.Field]; ok {
			rules = append(rules, r)
			continue
		}
		rules = append(rules, def)
	}

	s := c.Analysis.Sheets
	return &model.AnalysisConfig{
		Columns:          rules,
		ConversionValues: append([]string(nil), c.Analysis.ConversionValues...),
		ExecutionValues:  append([]string(nil), c.Analysis.ExecutionValues...),
		StaffMinSamples:  c.Analysis.StaffMinSamples,
		RouteMinSamples:  c.Analysis.RouteMinSamples,
		Sheets: model.SheetNames{
			Attribute:  s.Attribute,
			Conversion: s.Conversion,
			Monthly:    s.Monthly,
			Event:      s.Event,
			Staff:      s.Staff,
			Route:      s.Route,
		},
	}
}

// SaveConfig 保存配置到指定路径（空路径为可执行文件同目录）
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录；相对路径相对于 base
func ResolveDataDir(config *AppConfig, base string) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(base, config.Data.DataDir)
}

// EnsureDataDirAt 在 base 下创建数据目录
func EnsureDataDirAt(config *AppConfig, base string) (string, error) {
	dataDir := ResolveDataDir(config, base)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
