package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/condtoken/internal/application/settlement"
	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del settler.
type Config struct {
	Contract   ContractConfig   `yaml:"contract"`
	Settlement SettlementConfig `yaml:"settlement"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// ContractConfig son los parámetros inmutables de la instancia.
type ContractConfig struct {
	Address       string `yaml:"address"` // vacío = derivada de los params
	OracleAddress string `yaml:"oracle_address"`
	FeedName      string `yaml:"feed_name"`
	Comparison    string `yaml:"comparison"` // > >= < <= = !=
	FeedValue     string `yaml:"feed_value"`
	ExpiryDate    string `yaml:"expiry_date"`   // YYYY-MM-DD o RFC3339
	ReserveAsset  string `yaml:"reserve_asset"` // vacío o "base" = moneda nativa
}

// SettlementConfig controla las políticas de la instancia.
type SettlementConfig struct {
	NativeFee        *int64 `yaml:"native_fee"`        // nil = settlement.DefaultNativeFee
	DeadlineFallback string `yaml:"deadline_fallback"` // no | none
	LosingRedemption string `yaml:"losing_redemption"` // reject | burn
}

// OracleConfig elige de dónde se leen los feeds.
type OracleConfig struct {
	Source         string  `yaml:"source"` // store | http
	BaseURL        string  `yaml:"base_url"`
	RatePerSec     float64 `yaml:"rate_per_sec"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse interpreta un documento YAML ya leído y aplica overrides y defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// OracleTimeout devuelve el timeout HTTP del oráculo como time.Duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// Params convierte la sección contract en params de dominio validados.
func (c ContractConfig) Params() (domain.ContractParams, error) {
	op, err := domain.ParseOperator(c.Comparison)
	if err != nil {
		return domain.ContractParams{}, fmt.Errorf("config.Params: %w", err)
	}
	expiry, err := domain.ParseExpiry(c.ExpiryDate)
	if err != nil {
		return domain.ContractParams{}, fmt.Errorf("config.Params: %w", err)
	}
	p := domain.ContractParams{
		Address:      c.Address,
		OracleID:     c.OracleAddress,
		FeedName:     c.FeedName,
		Operator:     op,
		Threshold:    domain.ParseValue(c.FeedValue),
		Expiry:       expiry,
		ReserveAsset: domain.AssetID(c.ReserveAsset),
	}
	if err := p.Validate(); err != nil {
		return domain.ContractParams{}, fmt.Errorf("config.Params: %w", err)
	}
	return p.WithAddress(), nil
}

// Policy convierte la sección settlement en la config de la instancia.
// Los campos vacíos toman los valores por defecto.
func (s SettlementConfig) Policy() (settlement.Config, error) {
	cfg := settlement.DefaultConfig()
	if s.NativeFee != nil {
		cfg.NativeFee = *s.NativeFee
	}
	if s.DeadlineFallback != "" {
		cfg.Fallback = settlement.FallbackPolicy(s.DeadlineFallback)
	}
	if s.LosingRedemption != "" {
		cfg.Losing = settlement.LosingPolicy(s.LosingRedemption)
	}
	if err := cfg.Validate(); err != nil {
		return settlement.Config{}, fmt.Errorf("config.Policy: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SETTLER_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SETTLER_ORACLE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
		cfg.Oracle.Source = "http"
	}
	if v := os.Getenv("SETTLER_NATIVE_FEE"); v != "" {
		if fee, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Settlement.NativeFee = &fee
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Settlement.DeadlineFallback == "" {
		cfg.Settlement.DeadlineFallback = string(settlement.FallbackNo)
	}
	if cfg.Settlement.LosingRedemption == "" {
		cfg.Settlement.LosingRedemption = string(settlement.LosingReject)
	}
	if cfg.Oracle.Source == "" {
		cfg.Oracle.Source = "store"
	}
	if cfg.Oracle.RatePerSec <= 0 {
		cfg.Oracle.RatePerSec = 10
	}
	if cfg.Oracle.TimeoutSeconds <= 0 {
		cfg.Oracle.TimeoutSeconds = 10
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "settler.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
