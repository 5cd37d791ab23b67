package pricing

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the PricingEngine configuration.
type Config struct {
	// Modifiers
	FrequencyMultipliers map[string]float64 `mapstructure:"frequency_multipliers" validate:"dive,gt=0"`
	AddOnPrices          map[string]float64 `mapstructure:"add_on_prices" validate:"dive,gte=0"`
	RutPercentage        float64            `mapstructure:"rut_percentage" validate:"gte=0,lte=1"`
	RutEligibleZips      []string           `mapstructure:"rut_eligible_zips" validate:"dive,len=5,numeric"`
	WindowPrices         map[string]float64 `mapstructure:"window_prices" validate:"dive,gte=0"`
	WindowMinimumCharge  float64            `mapstructure:"window_minimum_charge" validate:"gte=0"`

	// Structural bounds
	MinArea float64 `mapstructure:"min_area" validate:"gt=0"`
	MaxArea float64 `mapstructure:"max_area" validate:"gtfield=MinArea"`

	// Informational VAT share of the total
	VatRate float64 `mapstructure:"vat_rate" validate:"gte=0,lt=1"`

	// Result cache; a size of 0 disables caching
	CacheSize int           `mapstructure:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`

	// Internal linear rules run after the modifiers
	Rules []Rule `mapstructure:"rules" validate:"dive"`

	Debug bool `mapstructure:"debug"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		FrequencyMultipliers: map[string]float64{
			string(FrequencyWeekly):    0.85,
			string(FrequencyBiweekly):  0.9,
			string(FrequencyMonthly):   1.0,
			string(FrequencyQuarterly): 1.1,
			string(FrequencyYearly):    1.2,
		},
		AddOnPrices: map[string]float64{
			"oven":     495,
			"fridge":   295,
			"cabinets": 395,
			"balcony":  295,
			"ironing":  350,
		},
		RutPercentage: 0.3,
		WindowPrices: map[string]float64{
			"standard":     60,
			"double":       90,
			"balcony_door": 120,
			"skylight":     150,
		},
		WindowMinimumCharge: 500,
		MinArea:             1,
		MaxArea:             1000,
		VatRate:             0.25,
		CacheSize:           1000,
		CacheTTL:            time.Hour,
	}
}

var configValidator = validator.New()

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return ErrInvalidConfig{Field: fe.Namespace(), Reason: "failed " + fe.Tag() + " constraint"}
		}
		return ErrInvalidConfig{Field: "pricing", Reason: err.Error()}
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return ErrInvalidConfig{Field: "cache_ttl", Reason: "must be positive when the cache is enabled"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
