package main

import (
	"flag"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/always-cache/clientcache"
)

var (
	// CLI flags
	configFilenameFlag string
	storeFlag          string
	repeatFlag         int
	disableFlag        bool
	metricsAddrFlag    string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file")
	flag.StringVar(&storeFlag, "store", "", "Cache store: 'memory' or 'sqlite' (overrides config)")
	flag.IntVar(&repeatFlag, "repeat", 2, "Number of times to fetch each URL")
	flag.BoolVar(&disableFlag, "disable", false, "Disable caching")
	flag.StringVar(&metricsAddrFlag, "metrics-addr", "", "Serve metrics on this address after fetching")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config, err := getConfig(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not read config")
	}
	if storeFlag != "" {
		config.Store = storeFlag
	}
	urls := append(config.URLs, flag.Args()...)
	if len(urls) == 0 {
		log.Fatal().Msg("Please specify URLs to fetch")
	}

	store, closeStore, err := newStore(config.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create cache store")
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	client := clientcache.NewClient(clientcache.Config{
		Cache:                store,
		Disabled:             config.Disabled || disableFlag,
		Registerer:           registry,
		Rules:                config.Rules,
		CacheableStatusCodes: config.CacheableStatusCodes,
		Name:                 config.Name,
	})

	results := fetchAll(client, urls, repeatFlag, log.Logger)
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	log.Info().Int("requests", len(results)).Int("failed", failed).Msg("Done")

	if metricsAddrFlag != "" {
		log.Info().Msgf("Serving metrics on %s", metricsAddrFlag)
		err := http.ListenAndServe(metricsAddrFlag, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}
	if failed > 0 {
		closeStore()
		os.Exit(1)
	}
}
