package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀, 例如 TILESTITCH_TM_ZOOM
const EnvPrefix = "TILESTITCH"

type Conf struct {
	App struct {
		Version string `mapstructure:"version"`
		Title   string `mapstructure:"title"`
	} `mapstructure:"app"`
	Output struct {
		Directory      string `mapstructure:"directory"`
		LogDir         string `mapstructure:"logDir"`
		OutputTerminal bool   `mapstructure:"outputTerminal"`
	} `mapstructure:"output"`
	Task struct {
		Workers   int           `mapstructure:"workers"`
		Timedelay int           `mapstructure:"timedelay"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"task"`
	Tm struct {
		Name      string `mapstructure:"name"`
		Zoom      int    `mapstructure:"zoom"`
		URL       string `mapstructure:"url"`
		UserAgent string `mapstructure:"userAgent"`
		Referer   string `mapstructure:"referer"`
	} `mapstructure:"tm"`
}

// flagKeys 命令行参数到配置项的映射
var flagKeys = map[string]string{
	"zoom":    "tm.zoom",
	"output":  "output.directory",
	"workers": "task.workers",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.version", "v 0.1.0")
	v.SetDefault("app.title", "Tile Stitch")
	v.SetDefault("output.directory", "")
	v.SetDefault("output.logDir", "")
	v.SetDefault("output.outputTerminal", true)
	v.SetDefault("task.workers", 1)
	v.SetDefault("task.timedelay", 0)
	v.SetDefault("task.timeout", 30*time.Second)
	v.SetDefault("tm.name", "streetview-coverage")
	v.SetDefault("tm.zoom", DefaultZoom)
	v.SetDefault("tm.url", DefaultTileURL)
	v.SetDefault("tm.userAgent", DefaultUserAgent)
	v.SetDefault("tm.referer", DefaultReferer)
}

// LoadConf 读取配置, 优先级: 命令行 > 环境变量 > 配置文件 > 默认值
func LoadConf(cfgFile string, flags *pflag.FlagSet) (*Conf, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file(%s) not exist: %w", cfgFile, err)
		}
		v.SetConfigType("toml")
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file(%s) error: %w", cfgFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Conf
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Output.Directory == "" {
		c.Output.Directory = fmt.Sprintf("zoom-%d", c.Tm.Zoom)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 校验配置
func (c *Conf) Validate() error {
	if _, err := GridSize(c.Tm.Zoom); err != nil {
		return err
	}
	if c.Task.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidInput, c.Task.Workers)
	}
	if c.Task.Timedelay < 0 {
		return fmt.Errorf("%w: timedelay must not be negative", ErrInvalidInput)
	}
	if c.Tm.URL == "" {
		return fmt.Errorf("%w: tile url is required", ErrInvalidInput)
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidInput)
	}
	return nil
}

// TileMap 当前配置对应的瓦片地图
func (c *Conf) TileMap() TileMap {
	return TileMap{
		URL:       c.Tm.URL,
		UserAgent: c.Tm.UserAgent,
		Referer:   c.Tm.Referer,
	}
}

// loadDotEnv 读取当前目录下的 .env, 文件不存在时忽略
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
