package config

import (
	"log"
	"strings"
	"time"

	"refera/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Scheduler SchedulerConfig
	Plan      PlanConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	NodeID       int64 // snowflake node for transaction refs
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// RedisConfig enables the distributed per-member lock when Addr is set;
// otherwise an in-process locker is used.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AMQPConfig enables event publishing when URL is set.
type AMQPConfig struct {
	URL      string
	Exchange string
}

type SchedulerConfig struct {
	Timezone       string
	SnapshotSpec   string // daily level/income snapshot
	WeeklySpec     string // weekly full recalculation
	SelfIncomeSpec string // daily self-income credit
}

// PlanConfig carries compensation-plan overrides. Zero values mean "use the
// default plan"; tier tables can be replaced wholesale from the config file.
type PlanConfig struct {
	SelfIncomePercent     float64               `mapstructure:"selfIncomePercent"`
	ValidMemberMinBalance float64               `mapstructure:"validMemberMinBalance"`
	CharacterPercents     map[string]float64    `mapstructure:"characterPercents"`
	DigitTiers            []PlanDigitTierConfig `mapstructure:"digitTiers"`
}

type PlanDigitTierConfig struct {
	Level         string  `mapstructure:"level"`
	DirectMembers int     `mapstructure:"directMembers"`
	SelfWalletMin float64 `mapstructure:"selfWalletMin"`
	Percent       float64 `mapstructure:"percent"`
}

// Load reads config.yaml (optional) plus REFERA_* environment variables over
// built-in defaults.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("REFERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8099")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.nodeId", 1)

	v.SetDefault("database.dsn", "refera:refera@tcp(localhost:3306)/refera?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.maxOpenConns", 100)
	v.SetDefault("database.connMaxLifetime", "1h")

	v.SetDefault("jwt.accessSecret", "change-me-in-production")
	v.SetDefault("jwt.refreshSecret", "change-me-refresh")
	v.SetDefault("jwt.accessExpiry", "15m")
	v.SetDefault("jwt.refreshExpiry", "168h")
	v.SetDefault("jwt.issuer", "refera")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "refera.events")

	v.SetDefault("scheduler.timezone", "Asia/Kolkata")
	v.SetDefault("scheduler.snapshotSpec", "0 0 * * *")
	v.SetDefault("scheduler.weeklySpec", "0 1 * * 0")
	v.SetDefault("scheduler.selfIncomeSpec", "0 12 * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("read config file: %v", err)
		}
	}

	var plan PlanConfig
	if err := v.UnmarshalKey("plan", &plan); err != nil {
		log.Fatalf("unmarshal plan config: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			ReadTimeout:  v.GetDuration("server.readTimeout"),
			WriteTimeout: v.GetDuration("server.writeTimeout"),
			NodeID:       v.GetInt64("server.nodeId"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.maxIdleConns"),
			MaxOpenConns:    v.GetInt("database.maxOpenConns"),
			ConnMaxLifetime: v.GetDuration("database.connMaxLifetime"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("jwt.accessSecret"),
			RefreshSecret: v.GetString("jwt.refreshSecret"),
			AccessExpiry:  v.GetDuration("jwt.accessExpiry"),
			RefreshExpiry: v.GetDuration("jwt.refreshExpiry"),
			Issuer:        v.GetString("jwt.issuer"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("amqp.url"),
			Exchange: v.GetString("amqp.exchange"),
		},
		Scheduler: SchedulerConfig{
			Timezone:       v.GetString("scheduler.timezone"),
			SnapshotSpec:   v.GetString("scheduler.snapshotSpec"),
			WeeklySpec:     v.GetString("scheduler.weeklySpec"),
			SelfIncomeSpec: v.GetString("scheduler.selfIncomeSpec"),
		},
		Plan: plan,
	}
}

// CompensationPlan builds the runtime plan: defaults overridden by PlanConfig.
func (c *Config) CompensationPlan() domain.CompensationPlan {
	plan := domain.DefaultPlan()
	if c.Plan.SelfIncomePercent > 0 {
		plan.SelfIncomePercent = decimal.NewFromFloat(c.Plan.SelfIncomePercent)
	}
	if c.Plan.ValidMemberMinBalance > 0 {
		plan.ValidMemberMinBalance = decimal.NewFromFloat(c.Plan.ValidMemberMinBalance)
	}
	for level, p := range c.Plan.CharacterPercents {
		if t := plan.CharacterTierByLevel(level); t != nil {
			t.Percent = decimal.NewFromFloat(p)
		}
	}
	if len(c.Plan.DigitTiers) > 0 {
		tiers := make([]domain.DigitTier, 0, len(c.Plan.DigitTiers))
		for _, t := range c.Plan.DigitTiers {
			tiers = append(tiers, domain.DigitTier{
				Level:         t.Level,
				DirectMembers: t.DirectMembers,
				SelfWalletMin: decimal.NewFromFloat(t.SelfWalletMin),
				Percent:       decimal.NewFromFloat(t.Percent),
			})
		}
		plan.DigitTiers = tiers
	}
	return plan
}

// Location resolves the scheduler timezone; all calendar-day comparisons use it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		log.Printf("invalid timezone %q, falling back to UTC", c.Scheduler.Timezone)
		return time.UTC
	}
	return loc
}
