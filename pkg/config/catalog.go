package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SequenceName 序列标识，取值限定在固定枚举集合内
type SequenceName string

// 已知序列
const (
	SequenceBody     SequenceName = "body"
	SequenceLung1    SequenceName = "lung1"
	SequenceLung2    SequenceName = "lung2"
	SequenceCoronal  SequenceName = "coronal"
	SequenceSaggital SequenceName = "saggital"
)

// KnownSequences 按固定顺序列出所有合法序列（用于快捷键切换）
var KnownSequences = []SequenceName{
	SequenceBody,
	SequenceLung1,
	SequenceLung2,
	SequenceCoronal,
	SequenceSaggital,
}

// IsKnown 判断序列名是否属于枚举集合
func (s SequenceName) IsKnown() bool {
	for _, known := range KnownSequences {
		if s == known {
			return true
		}
	}
	return false
}

// ConfigurationError 配置错误：引用了目录中不存在的序列
type ConfigurationError struct {
	Sequence SequenceName // 出错的序列标识
	Reason   string       // 附加说明，可为空
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration error: sequence %q: %s", string(e.Sequence), e.Reason)
	}
	return fmt.Sprintf("configuration error: unknown sequence %q", string(e.Sequence))
}

// SequenceEntry 目录中的一个序列条目
type SequenceEntry struct {
	Name   SequenceName `yaml:"name"`   // 序列标识
	Frames int          `yaml:"frames"` // 帧数（正整数）
}

// CatalogConfig 对应 data/catalog.yaml 的顶层结构
//
// 结构示例：
//
//	version: "1.0"
//	default_sequence: body
//	frame_pattern: "images/{sequence}/img{frame}.jpg"
//	preload_concurrency: 8
//	access: granted
//	sequences:
//	  - name: body
//	    frames: 73
type CatalogConfig struct {
	Version            string          `yaml:"version"`
	DefaultSequence    SequenceName    `yaml:"default_sequence"`
	FramePattern       string          `yaml:"frame_pattern"`
	PreloadConcurrency int             `yaml:"preload_concurrency"`
	Access             string          `yaml:"access"` // granted | denied
	Sequences          []SequenceEntry `yaml:"sequences"`
}

// Catalog 序列目录：序列标识 -> 帧数，加载后只读
type Catalog struct {
	config *CatalogConfig
	frames map[SequenceName]int
	order  []SequenceName
}

// LoadCatalog 从 YAML 文件加载序列目录
func LoadCatalog(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析 YAML 数据并构建序列目录
func ParseCatalog(data []byte) (*Catalog, error) {
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	applyCatalogDefaults(&cfg)

	if err := validateCatalog(&cfg); err != nil {
		return nil, fmt.Errorf("invalid catalog config: %w", err)
	}

	return newCatalog(&cfg), nil
}

// DefaultCatalog 返回内置的序列目录（与原始数据集的帧数一致）
func DefaultCatalog() *Catalog {
	cfg := &CatalogConfig{
		Version:         "1.0",
		DefaultSequence: SequenceBody,
		Sequences: []SequenceEntry{
			{Name: SequenceBody, Frames: 73},
			{Name: SequenceLung1, Frames: 34},
			{Name: SequenceLung2, Frames: 66},
			{Name: SequenceCoronal, Frames: 40},
			{Name: SequenceSaggital, Frames: 63},
		},
	}
	applyCatalogDefaults(cfg)
	return newCatalog(cfg)
}

func newCatalog(cfg *CatalogConfig) *Catalog {
	c := &Catalog{
		config: cfg,
		frames: make(map[SequenceName]int, len(cfg.Sequences)),
		order:  make([]SequenceName, 0, len(cfg.Sequences)),
	}
	for _, entry := range cfg.Sequences {
		c.frames[entry.Name] = entry.Frames
		c.order = append(c.order, entry.Name)
	}
	return c
}

func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.FramePattern == "" {
		cfg.FramePattern = DefaultFramePattern
	}
	if cfg.PreloadConcurrency <= 0 {
		cfg.PreloadConcurrency = DefaultPreloadConcurrency
	}
	if cfg.Access == "" {
		cfg.Access = "granted"
	}
	if cfg.DefaultSequence == "" && len(cfg.Sequences) > 0 {
		cfg.DefaultSequence = cfg.Sequences[0].Name
	}
}

// validateCatalog 验证配置的有效性
func validateCatalog(cfg *CatalogConfig) error {
	if len(cfg.Sequences) == 0 {
		return fmt.Errorf("sequences cannot be empty")
	}

	seen := make(map[SequenceName]bool, len(cfg.Sequences))
	for _, entry := range cfg.Sequences {
		if !entry.Name.IsKnown() {
			return &ConfigurationError{Sequence: entry.Name, Reason: "not one of the known sequences"}
		}
		if seen[entry.Name] {
			return &ConfigurationError{Sequence: entry.Name, Reason: "declared more than once"}
		}
		seen[entry.Name] = true
		if entry.Frames < 1 {
			return &ConfigurationError{
				Sequence: entry.Name,
				Reason:   fmt.Sprintf("frame count must be >= 1, got %d", entry.Frames),
			}
		}
	}

	if !seen[cfg.DefaultSequence] {
		return &ConfigurationError{Sequence: cfg.DefaultSequence, Reason: "default_sequence is not in the catalog"}
	}

	switch cfg.Access {
	case "granted", "denied":
	default:
		return fmt.Errorf("access must be \"granted\" or \"denied\", got %q", cfg.Access)
	}

	return nil
}

// FrameCount 返回序列的帧数
//
// 返回：
//   - int: 帧数
//   - error: 序列不在目录中时返回 *ConfigurationError
func (c *Catalog) FrameCount(name SequenceName) (int, error) {
	n, ok := c.frames[name]
	if !ok {
		return 0, &ConfigurationError{Sequence: name}
	}
	return n, nil
}

// Sequences 按声明顺序返回所有序列标识（返回副本）
func (c *Catalog) Sequences() []SequenceName {
	out := make([]SequenceName, len(c.order))
	copy(out, c.order)
	return out
}

// DefaultSequence 返回启动时显示的序列
func (c *Catalog) DefaultSequence() SequenceName {
	return c.config.DefaultSequence
}

// FramePattern 返回帧地址模板
func (c *Catalog) FramePattern() string {
	return c.config.FramePattern
}

// PreloadConcurrency 返回并发解码上限
func (c *Catalog) PreloadConcurrency() int {
	return c.config.PreloadConcurrency
}

// AccessGranted 返回配置的访问控制结果
func (c *Catalog) AccessGranted() bool {
	return c.config.Access == "granted"
}
