package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "path to sharestats.toml")
	flag.String("source", "", "upstream share source address override")
	flag.String("topic", "", "share log topic override")
	flag.String("http", "", "http bind address override")
	flag.Parse()

	cfg := loadConfig(*configPath)
	cfg = applyFlagOverrides(cfg, flag.CommandLine)
	applyLoggingConfig(cfg)

	source := newZMQShareSource(cfg.ShareSourceAddr)
	e := newEngine(cfg, defaultClock, source)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, stopping", "signal", sig.String())
		e.stop()
	}()

	if err := e.run(); err != nil {
		fatal("engine run failed", err)
	}

	logger.Info("engine stopped cleanly")
	logger.Stop()
}
