package config

import (
	"flag"

	"github.com/dmitrijs2005/credauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-k string     store kind: postgres or memory
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token validity (e.g., "1h")
//	-bc int       bcrypt cost
//	-n int        failed attempts tolerated per streak
//	-w duration   lockout window (e.g., "5m")
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 audit bucket (empty disables audit)
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string     log level
//
// args is filtered with flagx.FilterArgs first, so flags meant for other
// components (such as -c) are ignored.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-k", "-d", "-s", "-t", "-bc", "-n", "-w", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StoreKind, "k", config.StoreKind, "store kind (postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "access token validity")
	fs.IntVar(&config.BcryptCost, "bc", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.LockoutThreshold, "n", config.LockoutThreshold, "failed attempts tolerated per streak")
	fs.DurationVar(&config.LockoutWindow, "w", config.LockoutWindow, "lockout window")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 audit bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
