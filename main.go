package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"wanggj.com/promexport/exporter"
)

var (
	listenIP   = flag.String("address", "", "Address to listen on, overrides the config file.")
	listenPort = flag.Int("port", 0, "Port to listen on, overrides the config file.")
)

const shutdownGrace = 5 * time.Second

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := exporter.DefaultConfig()
	if path := flag.Arg(0); path != "" {
		var err error
		cfg, err = exporter.LoadConfig(path)
		if err != nil {
			glog.Fatal(err)
		}
	}
	if *listenIP != "" {
		cfg.ListenIP = *listenIP
	}
	if *listenPort != 0 {
		cfg.ListenPort = *listenPort
	}

	exp, err := exporter.NewFromConfig(cfg)
	if err != nil {
		if exp == nil {
			glog.Fatal(err)
		}
		glog.Warningf("Config loaded with errors: %v", err)
	}

	var renderer exporter.Renderer = exp
	if ttl := cfg.CacheTTL(); ttl > 0 {
		cached, err := exporter.NewCached(exp, ttl)
		if err != nil {
			glog.Fatal(err)
		}
		glog.Infof("Setting cache_life to: %s", cached.TTL())
		renderer = cached
	}

	if cfg.ProcStatsInterval > 0 {
		stats, err := exporter.NewProcStats(exp, time.Duration(cfg.ProcStatsInterval))
		if err != nil {
			glog.Fatal(err)
		}
		stats.Start()
		defer stats.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler(renderer))
	srv := &http.Server{Addr: cfg.Addr(), Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			glog.Warning(err)
		}
	}()

	glog.Infof("Exporter server address: %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		glog.Fatal(err)
	}
}
