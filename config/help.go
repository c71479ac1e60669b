package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Parking system

Usage:
  parking --mode=<mode> [--config-path=<path>]

Modes:
  driver-service   driver accounts and the session lifecycle (start/stop/pay)
  owner-service    parking owner accounts, billing policies and payment checks

Flags:
  --mode           service mode to run (required)
  --config-path    path to the config yaml file (default "config.yaml")
  --help           show this message
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig dumps the effective configuration, secrets redacted.
func PrintConfig(cfg *Config) {
	fmt.Printf("mode:            %s\n", cfg.Mode)
	fmt.Printf("database:        %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("rabbitmq:        %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("driver service:  :%s\n", cfg.Services.DriverService)
	fmt.Printf("owner service:   :%s\n", cfg.Services.OwnerService)
	fmt.Printf("access ttl:      %s\n", cfg.Auth.AccessTokenTTL)
}
