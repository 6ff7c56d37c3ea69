// Command catboxd runs a single-process IRC server.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sozahra/catboxd/internal/ircd"
	"github.com/sozahra/catboxd/internal/metrics"
)

func main() {
	log.SetFlags(0)

	port := flag.String("port", "6667", "Port to listen on.")
	password := flag.String("password", "", "Connection password. Empty means no password required.")
	configFile := flag.String("config", "", "Optional extended configuration file.")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on. Empty disables metrics.")
	verbose := flag.Bool("verbose", false, "Log at debug level.")
	flag.Parse()

	// Positional <port> <password> arguments, when given, override the
	// -port and -password flags.
	switch flag.NArg() {
	case 0:
	case 2:
		*port = flag.Arg(0)
		*password = flag.Arg(1)
	default:
		log.Fatalf("usage: catboxd [flags] [<port> <password>]")
	}

	cfg := ircd.DefaultConfig()
	cfg.ListenPort = *port
	cfg.Password = *password
	cfg.MetricsAddr = *metricsAddr

	if err := cfg.LoadExtra(*configFile); err != nil {
		log.Fatalf("unable to load config: %s", err)
	}

	level := ircd.LevelInfo
	if *verbose {
		level = ircd.LevelDebug
	}
	logger := ircd.StdLogger(level)

	var sink metrics.Sink = metrics.Noop{}
	if cfg.MetricsAddr != "" {
		prom, handler := metrics.NewPrometheus()
		sink = prom
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr, handler); err != nil {
				logger.Errorf("metrics server stopped: %s", err)
			}
		}()
	}

	srv := ircd.NewServer(cfg, logger, sink)

	if err := srv.Start(); err != nil {
		log.Fatalf("unable to start server: %s", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Infof("shutdown requested")
		srv.Stop()
	}()

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %s", err)
	}

	logger.Infof("server shutdown cleanly")
}
