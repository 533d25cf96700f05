package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	DeepSeek struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"deepseek"`
	Suno struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"suno"`
	MinIO struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
		Domain    string `yaml:"domain"`
	} `yaml:"minio"`
	Styles struct {
		CatalogPath string `yaml:"catalog_path"`
	} `yaml:"styles"`
}

var AppConfig *Config

func InitConfig() {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		log.Fatalf("配置文件读取失败: %v", err)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	AppConfig = &Config{}
	if err := decoder.Decode(AppConfig); err != nil {
		log.Fatalf("配置文件解析失败: %v", err)
	}
	if AppConfig.DeepSeek.BaseURL == "" {
		AppConfig.DeepSeek.BaseURL = "https://api.deepseek.com"
	}
	if AppConfig.DeepSeek.Model == "" {
		AppConfig.DeepSeek.Model = "deepseek-chat"
	}
	if AppConfig.Suno.BaseURL == "" {
		AppConfig.Suno.BaseURL = "https://yunwu.ai"
	}
}
