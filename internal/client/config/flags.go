package config

import (
	"flag"

	"github.com/dmitrijs2005/credauth/internal/flagx"
)

// FlagsWithValues lists every flag the CLI accepts that consumes a value,
// so subcommand detection can skip over their arguments.
var FlagsWithValues = []string{"-a", "-r", "-f", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     address and port of the backend server
//	-r duration   per-request timeout (e.g., "5s")
//	-f string     access token file
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.TokenFile, "f", cfg.TokenFile, "access token file")

	return fs.Parse(args)
}
