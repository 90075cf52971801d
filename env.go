package accessgate

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FromEnv builds a [Config] from the environment and an optional .env file.
// Environment variables override .env; anything unset keeps the package
// default. Recognized keys:
//
//	ACCESSGATE_SIGNING_METHOD      "hs256" | "ed25519"
//	ACCESSGATE_SIGNING_KEY         hs256 secret or PEM private key
//	ACCESSGATE_PUBLIC_KEY          PEM public key (ed25519 only)
//	ACCESSGATE_JWT_ISSUER          iss claim
//	ACCESSGATE_ACCESS_TTL          duration, e.g. "24h"
//	ACCESSGATE_REFRESH_TTL         duration, e.g. "168h"
//	ACCESSGATE_INACTIVITY_LIMIT    duration, e.g. "168h"
//	ACCESSGATE_SWEEP_INTERVAL      duration, e.g. "1h"
//	ACCESSGATE_COOKIE_NAME         access-token cookie name
//	ACCESSGATE_RATE_<TIER>_WINDOW_MS  per-tier window in milliseconds
//	ACCESSGATE_RATE_<TIER>_MAX        per-tier request budget
//
// where <TIER> is one of TRADING, SIPHON, VAULT, PORTFOLIO, AUTH, GENERAL.
func FromEnv() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine (e.g. in CI)

	v.AutomaticEnv()

	cfg := defaultConfig()

	cfg.JWT.SigningMethod = getString(v, "ACCESSGATE_SIGNING_METHOD", cfg.JWT.SigningMethod)
	if key := v.GetString("ACCESSGATE_SIGNING_KEY"); key != "" {
		cfg.JWT.PrivateKey = []byte(key)
	}
	if key := v.GetString("ACCESSGATE_PUBLIC_KEY"); key != "" {
		cfg.JWT.PublicKey = []byte(key)
	}
	cfg.JWT.Issuer = getString(v, "ACCESSGATE_JWT_ISSUER", cfg.JWT.Issuer)
	cfg.CookieName = getString(v, "ACCESSGATE_COOKIE_NAME", cfg.CookieName)

	var err error
	if cfg.JWT.AccessTTL, err = getDuration(v, "ACCESSGATE_ACCESS_TTL", cfg.JWT.AccessTTL); err != nil {
		return cfg, err
	}
	if cfg.JWT.RefreshTTL, err = getDuration(v, "ACCESSGATE_REFRESH_TTL", cfg.JWT.RefreshTTL); err != nil {
		return cfg, err
	}
	if cfg.Session.InactivityLimit, err = getDuration(v, "ACCESSGATE_INACTIVITY_LIMIT", cfg.Session.InactivityLimit); err != nil {
		return cfg, err
	}
	if cfg.Session.SweepInterval, err = getDuration(v, "ACCESSGATE_SWEEP_INTERVAL", cfg.Session.SweepInterval); err != nil {
		return cfg, err
	}

	for tier, tierCfg := range cfg.RateLimit.Limits {
		upper := strings.ToUpper(string(tier))

		if ms := v.GetInt("ACCESSGATE_RATE_" + upper + "_WINDOW_MS"); ms > 0 {
			tierCfg.Window = time.Duration(ms) * time.Millisecond
		}
		if max := v.GetInt("ACCESSGATE_RATE_" + upper + "_MAX"); max > 0 {
			tierCfg.MaxRequests = max
		}
		cfg.RateLimit.Limits[tier] = tierCfg
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, fallback string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}

func getDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	s := v.GetString(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration: %q", key, s)
	}
	return d, nil
}
