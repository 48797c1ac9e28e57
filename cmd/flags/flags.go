package flags

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/common"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/config"
)

const envPrefix = "MYPRIVATENOTE_"

func envVars(name string) []string {
	return []string{envPrefix + name}
}

// SetupLogger builds the logger from the logging flags alone.
func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	return NewLogger(config.LogConfig{
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		UID:     cCtx.Bool(LogUidFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
	})
}

func NewLogger(opts config.LogConfig) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   opts.Debug,
		JSON:    opts.JSON,
		Service: opts.Service,
		Version: common.Version,
	})

	if opts.UID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// LoadConfig reads --config (or the defaults) and applies every flag that
// was set explicitly, on the command line or through the environment.
func LoadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := cCtx.String(ConfigFlag.Name); path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if cCtx.IsSet(ListenAddrFlag.Name) {
		cfg.ListenAddr = cCtx.String(ListenAddrFlag.Name)
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if cCtx.IsSet(MetricsAddrFlag.Name) {
		cfg.MetricsAddr = cCtx.String(MetricsAddrFlag.Name)
	}
	if cCtx.IsSet(NoteStoreFlag.Name) {
		cfg.NoteStore = cCtx.String(NoteStoreFlag.Name)
	}
	if cCtx.IsSet(CountersBackendFlag.Name) {
		cfg.CountersBackends = cCtx.StringSlice(CountersBackendFlag.Name)
	}
	if cCtx.IsSet(IDLengthFlag.Name) {
		cfg.IDLength = cCtx.Int(IDLengthFlag.Name)
	}
	if cCtx.IsSet(CORSOriginsFlag.Name) {
		cfg.CORSOrigins = cCtx.StringSlice(CORSOriginsFlag.Name)
	}
	if cCtx.IsSet(PprofFlag.Name) {
		cfg.Pprof = cCtx.Bool(PprofFlag.Name)
	}
	if cCtx.IsSet(DrainSecondsFlag.Name) {
		cfg.DrainSeconds = cCtx.Int64(DrainSecondsFlag.Name)
	}
	if cCtx.IsSet(LogJsonFlag.Name) {
		cfg.Log.JSON = cCtx.Bool(LogJsonFlag.Name)
	}
	if cCtx.IsSet(LogDebugFlag.Name) {
		cfg.Log.Debug = cCtx.Bool(LogDebugFlag.Name)
	}
	if cCtx.IsSet(LogUidFlag.Name) {
		cfg.Log.UID = cCtx.Bool(LogUidFlag.Name)
	}
	if cCtx.IsSet(LogServiceFlag.Name) {
		cfg.Log.Service = cCtx.String(LogServiceFlag.Name)
	}

	return cfg, cfg.Validate()
}

func ConfigureServer(cfg *config.Config, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		Log:                      logger,
		EnablePprof:              cfg.Pprof,
		CORSAllowedOrigins:       cfg.CORSOrigins,
		DrainDuration:            time.Duration(cfg.DrainSeconds) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML configuration file; explicitly set flags take precedence",
	EnvVars: envVars("CONFIG"),
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:3000",
	Usage:   "address to listen on for API (PORT is honoured when unset)",
	EnvVars: envVars("LISTEN_ADDR"),
}

var NoteStoreFlag = &cli.StringFlag{
	Name:    "note-store",
	Value:   "memory://",
	Usage:   "note store URI: memory://, sqlite:///path/notes.db or postgres://...",
	EnvVars: envVars("NOTE_STORE"),
}

var CountersBackendFlag = &cli.StringSliceFlag{
	Name:    "counters-backend",
	Value:   cli.NewStringSlice("file://./data"),
	Usage:   "storage URI for usage counters (file://, s3://, vault://); repeat for redundancy",
	EnvVars: envVars("COUNTERS_BACKEND"),
}

var IDLengthFlag = &cli.IntFlag{
	Name:    "id-length",
	Value:   16,
	Usage:   "length of generated note identifiers",
	EnvVars: envVars("ID_LENGTH"),
}

var CORSOriginsFlag = &cli.StringSliceFlag{
	Name:    "cors-origins",
	Usage:   "origins allowed to call the API from browsers (default any)",
	EnvVars: envVars("CORS_ORIGINS"),
}

var ServerURLFlag = &cli.StringFlag{
	Name:    "server",
	Value:   "http://127.0.0.1:3000",
	Usage:   "base URL of the note API",
	EnvVars: envVars("SERVER"),
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: envVars("LOG_JSON"),
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: envVars("LOG_DEBUG"),
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait after marking the server not ready before shutting down",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics",
	EnvVars: envVars("METRICS_ADDR"),
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var CommonFlags = append([]cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}, LogFlags...)
