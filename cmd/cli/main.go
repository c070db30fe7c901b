package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/gkum4/vital-signs-decision-tree/internal/commander"
	"github.com/gkum4/vital-signs-decision-tree/internal/config"
	"github.com/gkum4/vital-signs-decision-tree/internal/logging"
)

func main() {
	interactive := flag.Bool("i", true, "Interactive mode")
	configFile := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	if *interactive {
		cmd := commander.NewCommander(cfg)
		cmd.Start()
	}
}
