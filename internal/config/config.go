package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MemoryDSN selects the in-process store instead of Postgres.
const MemoryDSN = "memory://"

// DefaultMigrationsDir означает встроенные в бинарь миграции
const DefaultMigrationsDir = "migrations"

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string
	HTTPAddr      string
	MigrationsDir string
	Timezone      string
	WeeklyQuota   int
	Cutover       week.Rule
	AdminIDs      []int64
	AuditInterval time.Duration
	GroupAliases  map[string]string

	// EnvFileLoaded сообщает, был ли прочитан .env
	EnvFileLoaded bool
}

// policyFile формат YAML-файла с политикой квот
type policyFile struct {
	Timezone string `yaml:"timezone"`
	Quota    struct {
		WeeklyLimit *int `yaml:"weekly_limit"`
		Cutover     struct {
			Weekday string `yaml:"weekday"`
			Hour    *int   `yaml:"hour"`
		} `yaml:"cutover"`
	} `yaml:"quota"`
	GroupAliases map[string]string `yaml:"group_aliases"`
}

// Load читает .env, YAML-файл политики (path или CONFIG_FILE) и переменные окружения.
// Переменные окружения важнее файла.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Environment:   "development",
		HTTPAddr:      ":8080",
		MigrationsDir: DefaultMigrationsDir,
		Timezone:      "Europe/Berlin",
		WeeklyQuota:   quota.DefaultWeeklyLimit,
		Cutover:       week.DefaultRule(),
		AuditInterval: time.Hour,
		GroupAliases:  map[string]string{},
	}

	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	cfg.EnvFileLoaded = godotenv.Load(".env") == nil

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if err := cfg.Cutover.Validate(); err != nil {
		return nil, fmt.Errorf("cutover rule: %w", err)
	}
	if cfg.WeeklyQuota < 0 {
		return nil, fmt.Errorf("WEEKLY_QUOTA must not be negative")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.Timezone != "" {
		c.Timezone = file.Timezone
	}
	if file.Quota.WeeklyLimit != nil {
		c.WeeklyQuota = *file.Quota.WeeklyLimit
	}
	if file.Quota.Cutover.Weekday != "" {
		d, err := week.ParseWeekday(file.Quota.Cutover.Weekday)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		c.Cutover.Weekday = d
	}
	if file.Quota.Cutover.Hour != nil {
		c.Cutover.Hour = *file.Quota.Cutover.Hour
	}
	for group, alias := range file.GroupAliases {
		c.GroupAliases[strings.ToLower(group)] = alias
	}

	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DBDSN, "DB_DSN")
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.Environment, "ENV")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.MigrationsDir, "MIGRATIONS_DIR")
	setString(&c.Timezone, "TIMEZONE")

	if v := os.Getenv("WEEKLY_QUOTA"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEEKLY_QUOTA: %w", err)
		}
		c.WeeklyQuota = n
	}
	if v := os.Getenv("CUTOVER_WEEKDAY"); v != "" {
		d, err := week.ParseWeekday(v)
		if err != nil {
			return fmt.Errorf("CUTOVER_WEEKDAY: %w", err)
		}
		c.Cutover.Weekday = d
	}
	if v := os.Getenv("CUTOVER_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CUTOVER_HOUR: %w", err)
		}
		c.Cutover.Hour = n
	}
	if v := os.Getenv("AUDIT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("AUDIT_INTERVAL: invalid duration %q", v)
		}
		c.AuditInterval = d
	}
	if v := os.Getenv("ADMIN_TELEGRAM_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("ADMIN_TELEGRAM_IDS: %w", err)
		}
		c.AdminIDs = ids
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Location возвращает часовой пояс для расчёта недели
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// UseMemoryStore сообщает, что вместо Postgres нужно хранилище в памяти
func (c *Config) UseMemoryStore() bool {
	return c.DBDSN == MemoryDSN
}

// BotEnabled сообщает, задан ли токен бота
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
