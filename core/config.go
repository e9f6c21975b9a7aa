package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug           bool
	TestMode        bool
	Env             string // DEV (local; default), TEST, QA, PROD
	Build           string
	AppName         string
	DefaultSchoolID string
	RollbarToken    string
	WorkDir         string

	Server struct {
		Host            string
		Addr            string
		DebugAddr       string
		ShutdownTimeout time.Duration
	}

	Database struct {
		URI     string
		Name    string
		Timeout time.Duration
	}

	Auth struct {
		SessionDataURL string
		Timeout        time.Duration
	}

	Insight struct {
		Enabled bool
		APIKey  string
		BaseURL string
		Model   string
		Timeout time.Duration
	}
}

// NewConfig loads the app configuration from the environment.
// A config/.env.<env> file is loaded first if it exists.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Shiksha")
	conf.SetDefault("defaultSchoolID", "default_school")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "shiksha")
	conf.SetDefault("databaseTimeout", 10*time.Second)
	conf.SetDefault("authSessionDataURL", "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data")
	conf.SetDefault("authTimeout", 10*time.Second)
	conf.SetDefault("insightEnabled", true)
	conf.SetDefault("insightAPIKey", "")
	conf.SetDefault("insightBaseURL", "https://api.openai.com/v1")
	conf.SetDefault("insightModel", "gpt-4o-mini")
	conf.SetDefault("insightTimeout", 30*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		Env:             env,
		Build:           conf.GetString("build"),
		AppName:         conf.GetString("appName"),
		DefaultSchoolID: conf.GetString("defaultSchoolID"),
		RollbarToken:    conf.GetString("rollbarToken"),
		WorkDir:         wd,
	}
	c.Server.Host = conf.GetString("serverHost")
	c.Server.Addr = conf.GetString("serverAddr")
	c.Server.DebugAddr = conf.GetString("serverDebugAddr")
	c.Server.ShutdownTimeout = conf.GetDuration("serverShutdownTimeout")
	c.Database.URI = conf.GetString("databaseURI")
	c.Database.Name = conf.GetString("databaseName")
	c.Database.Timeout = conf.GetDuration("databaseTimeout")
	c.Auth.SessionDataURL = conf.GetString("authSessionDataURL")
	c.Auth.Timeout = conf.GetDuration("authTimeout")
	c.Insight.Enabled = conf.GetBool("insightEnabled")
	c.Insight.APIKey = conf.GetString("insightAPIKey")
	c.Insight.BaseURL = conf.GetString("insightBaseURL")
	c.Insight.Model = conf.GetString("insightModel")
	c.Insight.Timeout = conf.GetDuration("insightTimeout")
	return c
}
