// Package config reads the job digest settings from the environment, an optional .env file and an
// optional YAML config file. Keys are the lower-cased environment variable names.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/AlfredBerg/jobdigest/internal/mailer"
	"github.com/spf13/viper"
)

const (
	FetchModeBrowser = "browser"
	FetchModeStatic  = "static"
)

var ErrUnknownFetchMode = errors.New("unknown fetch mode")

type Config struct {
	MaxPerBoard int
	MaxTotal    int
	// Keywords is parsed and logged but does not filter anything.
	Keywords []string

	SMTP     mailer.Config
	Location *time.Location

	FetchMode  string
	NavTimeout time.Duration
	BrowserBin string
	Headless   bool

	// ArchiveDB is an optional sqlite file that receives a record of every run.
	ArchiveDB string
	LogLevel  string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("max_per_board", 6)
	v.SetDefault("max_total", 20)
	v.SetDefault("keywords", "entry level,junior,fresher,0-2 years,react native,web developer")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_secure", "false")
	v.SetDefault("digest_timezone", "Asia/Kolkata")
	v.SetDefault("fetch_mode", FetchModeBrowser)
	v.SetDefault("nav_timeout", "30s")
	v.SetDefault("headless", true)
	v.SetDefault("log_level", "info")
}

// Load builds a Config from v. Values that cannot be interpreted are errors; missing mail settings
// are not, they surface when the mail server refuses them.
func Load(v *viper.Viper) (*Config, error) {
	maxPerBoard, err := intSetting(v, "max_per_board")
	if err != nil {
		return nil, err
	}
	maxTotal, err := intSetting(v, "max_total")
	if err != nil {
		return nil, err
	}
	port, err := intSetting(v, "smtp_port")
	if err != nil {
		return nil, err
	}
	navTimeout, err := durationSetting(v, "nav_timeout")
	if err != nil {
		return nil, err
	}

	tz := v.GetString("digest_timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	mode := strings.ToLower(strings.TrimSpace(v.GetString("fetch_mode")))
	if mode != FetchModeBrowser && mode != FetchModeStatic {
		return nil, fmt.Errorf("%w %q, want %q or %q", ErrUnknownFetchMode, mode, FetchModeBrowser, FetchModeStatic)
	}

	from := v.GetString("from_email")
	if from == "" {
		from = v.GetString("smtp_user")
	}

	return &Config{
		MaxPerBoard: maxPerBoard,
		MaxTotal:    maxTotal,
		Keywords:    splitList(v.GetString("keywords")),
		SMTP: mailer.Config{
			Host: v.GetString("smtp_host"),
			Port: port,
			// only the literal "true" enables implicit TLS
			Secure: v.GetString("smtp_secure") == "true",
			User:   v.GetString("smtp_user"),
			Pass:   v.GetString("smtp_pass"),
			From:   from,
			To:     v.GetString("to_email"),
		},
		Location:   loc,
		FetchMode:  mode,
		NavTimeout: navTimeout,
		BrowserBin: v.GetString("browser_bin"),
		Headless:   v.GetBool("headless"),
		ArchiveDB:  v.GetString("archive_db"),
		LogLevel:   v.GetString("log_level"),
	}, nil
}

func intSetting(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", strings.ToUpper(key), raw, err)
	}
	return n, nil
}

// durationSetting accepts Go durations ("45s") or a bare number of milliseconds.
func durationSetting(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", strings.ToUpper(key), raw, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
