package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./licitamonitor.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CronSecret    string `long:"cron-secret" env:"CRON_SECRET" description:"Shared secret for the reconciliation trigger and admin endpoints"`
	CheckSchedule string `long:"check-schedule" env:"CHECK_SCHEDULE" default:"30 8 * * *" description:"Cron spec for the daily record check (local time)"`

	// Telegram configuration
	TelegramToken  string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token (notifications disabled when empty)"`
	TelegramAPIURL string `long:"telegram-api-url" env:"TELEGRAM_API_URL" default:"https://api.telegram.org" description:"Telegram Bot API base URL"`

	// Portal configuration
	PortalURL     string `long:"portal-url" env:"PORTAL_URL" default:"https://www.comprasnet.ba.gov.br/inter/system/Licitacao/FormularioConsultaAcompanhamento.asp" description:"Procurement portal search form URL"`
	PortalProfile string `long:"portal-profile" env:"PORTAL_PROFILE" description:"Optional YAML file overriding portal selectors and timeouts"`
	Headless      bool   `long:"headless" env:"HEADLESS" description:"Run the browser headless"`
	BrowserPath   string `long:"browser-path" env:"BROWSER_PATH" description:"Optional Chromium executable path"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36" description:"User agent string for browser sessions"`
	Timezone  string `long:"timezone" env:"TZ" default:"America/Bahia" description:"Timezone for timestamps and the daily schedule"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		Port:           raw.Port,
		CronSecret:     raw.CronSecret,
		CheckSchedule:  raw.CheckSchedule,
		TelegramToken:  raw.TelegramToken,
		TelegramAPIURL: raw.TelegramAPIURL,
		PortalURL:      raw.PortalURL,
		PortalProfile:  raw.PortalProfile,
		Headless:       raw.Headless,
		BrowserPath:    raw.BrowserPath,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
