package main

import (
	"fmt"
	"time"

	"github.com/crimson-sun/latewatch/internal/config"
	"github.com/crimson-sun/latewatch/internal/connector"
	"github.com/crimson-sun/latewatch/internal/ingest"
	"github.com/crimson-sun/latewatch/internal/logging"
	"github.com/crimson-sun/latewatch/internal/output"
	"github.com/crimson-sun/latewatch/internal/output/async"
	"github.com/crimson-sun/latewatch/internal/output/file"
	"github.com/crimson-sun/latewatch/internal/output/multi"
	"github.com/crimson-sun/latewatch/internal/output/stdout"
	"github.com/crimson-sun/latewatch/internal/output/webhook"
)

// loadConfig reads configuration, applies command-level overrides,
// validates it and initialises logging.
func loadConfig(overrides ...func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	logging.Init(cfg.HasTarget("stdout"), logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func buildEngine(cfg config.Config, now func() time.Time) (*ingest.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return ingest.NewDefault(ingest.Options{
		Location: loc,
		Clock:    now,
		Locale:   cfg.Ingest.Locale,
	}), nil
}

func buildConnector(cfg config.Config) (connector.Connector, error) {
	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

// localFile points the configuration at a file on disk instead of the
// configured feed.
func localFile(path, contentType string) func(*config.Config) {
	return func(c *config.Config) {
		c.Connector = config.ConnectorConfig{
			Provider: "file",
			Extra:    map[string]string{"path": path},
		}
		if contentType != "" {
			c.Connector.Extra["content_type"] = contentType
		}
	}
}

// connectorConfigs maps every configured source onto the connector type,
// passing the HTTP timeout through Extra.
func connectorConfigs(cfg config.Config) []connector.ConnectorConfig {
	var out []connector.ConnectorConfig
	for _, src := range cfg.SourceConfigs() {
		extra := make(map[string]string, len(src.Extra)+1)
		for k, v := range src.Extra {
			extra[k] = v
		}
		if _, ok := extra["timeout"]; !ok && cfg.Timeout > 0 {
			extra["timeout"] = cfg.Timeout.String()
		}
		out = append(out, connector.ConnectorConfig{
			Provider: src.Provider,
			APIKey:   src.APIKey,
			Endpoint: src.Endpoint,
			Extra:    extra,
		})
	}
	return out
}

// buildOutput assembles the configured targets. The webhook runs behind an
// async buffer so a slow receiver never stalls ingestion.
func buildOutput(cfg config.Config) (output.Output, error) {
	verbosity, err := output.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return nil, err
	}

	var outs []output.Output
	for _, target := range cfg.Output.Targets {
		switch target {
		case "stdout":
			outs = append(outs, stdout.New(verbosity, cfg.Output.Pretty))
		case "file":
			f, err := file.New(cfg.Output.File, verbosity, file.WithMaxSize(cfg.Output.MaxSize))
			if err != nil {
				multi.New(outs...).Close()
				return nil, err
			}
			outs = append(outs, f)
		case "webhook":
			wh := webhook.New(cfg.Output.WebhookURL,
				webhook.WithVerbosity(verbosity),
				webhook.WithTimeout(cfg.Timeout),
			)
			outs = append(outs, async.New(wh))
		default:
			multi.New(outs...).Close()
			return nil, fmt.Errorf("unknown output %q", target)
		}
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
