package config

import (
	"github.com/urfave/cli/v3"
)

// DefaultAddr is used when neither flags nor the config file set one.
const DefaultAddr = "localhost:4981"

// Server holds server configuration
type Server struct {
	Addr string
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address (default " + DefaultAddr + ")",
			Sources:     cli.EnvVars("ARGOS_ADDR"),
			Destination: &s.Addr,
		},
	}
}
