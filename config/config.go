// Package config loads server settings: struct defaults, then an optional
// YAML file, then CASHFLOW_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/generic"
)

const envPrefix = "CASHFLOW_"

type Application struct {
	Server    Server    `koanf:"server"`
	Log       Log       `koanf:"log"`
	Breakdown Breakdown `koanf:"breakdown"`
}

type Server struct {
	Port           int      `koanf:"port"`
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Breakdown struct {
	DefaultStep   string `koanf:"defaultstep"`
	HorizonMonths int    `koanf:"horizonmonths"`
	MaxBuckets    int    `koanf:"maxbuckets"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Breakdown: Breakdown{
			DefaultStep:   string(budget.DefaultStep),
			HorizonMonths: generic.DefaultHorizonMonths,
			MaxBuckets:    budget.DefaultMaxBuckets,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Infof("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(k, v string) (string, any) {
		k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
		if k == "server.allowedorigins" {
			return k, strings.Split(v, ",")
		}
		return k, v
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// BudgetOptions turns the breakdown section into options for new budgets.
// An unsupported default step falls back to "1 day" like any other step.
func (a Application) BudgetOptions() []budget.Option {
	opts := []budget.Option{
		budget.WithHorizonMonths(a.Breakdown.HorizonMonths),
		budget.WithMaxBuckets(a.Breakdown.MaxBuckets),
	}
	if a.Breakdown.DefaultStep != "" {
		opts = append(opts, budget.WithDefaultStep(generic.ResolveInterval(a.Breakdown.DefaultStep)))
	}
	return opts
}

// ConfigureLogging applies the log section to the standard logrus logger.
func (a Application) ConfigureLogging() error {
	level, err := log.ParseLevel(a.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if a.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
