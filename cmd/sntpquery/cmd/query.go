package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coriolis-ntp/sntp"
	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/internal/metrics"
	"github.com/coriolis-ntp/sntp/internal/sntpconfig"
	"github.com/coriolis-ntp/sntp/internal/sntplog"
)

var (
	serverFlag         string
	portFlag           int
	timeoutSecondsFlag float64
	timeAllowedFlag    float64
	clientVersionFlag  uint8
	noMinimizeFlag     bool
	ttlFlag            int
)

func init() {
	RootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&serverFlag, "server", "S", "", "server to query, overrides the config file")
	queryCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "UDP port to query, overrides the config file (0 = use config/default)")
	queryCmd.Flags().Float64Var(&timeoutSecondsFlag, "timeout", 0, "per-attempt response timeout in seconds, overrides the config file")
	queryCmd.Flags().Float64Var(&timeAllowedFlag, "time-allowed", 0, "overall time budget across every resolved address, in seconds (0 = unbounded)")
	queryCmd.Flags().Uint8Var(&clientVersionFlag, "client-version", 0, "NTP version to request (3 or 4), overrides the config file")
	queryCmd.Flags().BoolVar(&noMinimizeFlag, "no-minimize", false, "disable transmit-timestamp data minimization")
	queryCmd.Flags().IntVar(&ttlFlag, "ttl", 0, "IP TTL for outgoing packets, overrides the config file (0 = system default)")
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an SNTP server once and print the offset, round trip, and stratum",
	RunE: func(cmd *cobra.Command, args []string) error {
		configureVerbosity()

		cfg, err := sntpconfig.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cfg)
		if !verbose {
			level, err := log.ParseLevel(cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("invalid logging level: %w", err)
			}
			log.SetLevel(level)
		}

		registry := prometheus.NewRegistry()
		recorder := metrics.NewPrometheusRecorder(registry)
		if cfg.Metrics.Enabled {
			go serveMetrics(cfg.Metrics.ListenAddr, registry)
		}

		timeout, err := chrono.DurationOfMillis(int64(cfg.Server.TimeoutSeconds * 1000))
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}

		engine, err := sntp.NewEngineBuilder().
			WithServerAddress(cfg.Server.Address, cfg.Server.Port).
			WithResponseTimeout(timeout).
			WithLogger(sntplog.NewLogrusLogger(log.StandardLogger())).
			WithMetricsRecorder(recorder).
			WithDataMinimization(cfg.Server.DataMinimization).
			WithClientVersion(cfg.Server.ClientVersion).
			WithTTL(cfg.Server.TTL).
			Build()
		if err != nil {
			return err
		}

		var timeAllowed *chrono.Duration
		if cfg.Server.TimeAllowedSeconds > 0 {
			d, err := chrono.DurationOfMillis(int64(cfg.Server.TimeAllowedSeconds * 1000))
			if err != nil {
				return fmt.Errorf("invalid time-allowed: %w", err)
			}
			timeAllowed = &d
		}

		result, err := engine.ExecuteQuery(context.Background(), timeAllowed)
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

func applyFlagOverrides(cfg *sntpconfig.Config) {
	if serverFlag != "" {
		cfg.Server.Address = serverFlag
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}
	if timeoutSecondsFlag != 0 {
		cfg.Server.TimeoutSeconds = timeoutSecondsFlag
	}
	if timeAllowedFlag != 0 {
		cfg.Server.TimeAllowedSeconds = timeAllowedFlag
	}
	if clientVersionFlag != 0 {
		cfg.Server.ClientVersion = clientVersionFlag
	}
	if noMinimizeFlag {
		cfg.Server.DataMinimization = false
	}
	if ttlFlag != 0 {
		cfg.Server.TTL = ttlFlag
	}
}

func printResult(result sntp.QueryResult) error {
	switch result.Kind {
	case sntp.Success:
		offsetMillis, err := result.Signal.Offset.Millis()
		if err != nil {
			return err
		}
		roundTripMillis, err := result.Signal.RoundTrip.Millis()
		if err != nil {
			return err
		}
		fmt.Printf("offset=%dms roundtrip=%dms stratum=%d refid=%s\n",
			offsetMillis, roundTripMillis, result.Signal.Stratum, result.Signal.ReferenceIdentifier)
		return nil
	default:
		log.Errorf("query failed: %s: %v", result.Kind, result.Cause)
		return fmt.Errorf("sntp: query returned %s", result.Kind)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	log.Warningf("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server stopped: %v", err)
	}
}
