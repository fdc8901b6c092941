// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the API server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string

	// APIBaseURL is the backend base URL the client talks to.
	APIBaseURL string

	// RPCURL is the JSON-RPC endpoint of the target chain. Empty means
	// the client runs without a chain connection (degraded mode).
	RPCURL string

	// ContractAddress is the deployed traceability contract address.
	ContractAddress string

	// ChainID is the expected network id (Polygon Amoy by default).
	ChainID int64

	// PrivateKey is the hex-encoded wallet key used by the CLI client.
	PrivateKey string

	// SessionDir is where the client persists its session.
	SessionDir string

	// JWTSecret signs backend-issued bearer tokens.
	JWTSecret string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:5000", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.APIBaseURL, "api", "http://localhost:5000", "backend base URL")
	flag.StringVar(&options.RPCURL, "rpc", "", "chain JSON-RPC endpoint (empty: no chain)")
	flag.StringVar(&options.ContractAddress, "contract", "", "traceability contract address")
	flag.Int64Var(&options.ChainID, "chain-id", 80002, "expected chain id")
	flag.StringVar(&options.PrivateKey, "key", "", "hex wallet private key")
	flag.StringVar(&options.SessionDir, "session-dir", ".ayurtrace", "session storage directory")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if api := os.Getenv("AYURTRACE_API_URL"); api != "" {
		options.APIBaseURL = api
	}
	if rpc := os.Getenv("AYURTRACE_RPC_URL"); rpc != "" {
		options.RPCURL = rpc
	}
	if contract := os.Getenv("AYURTRACE_CONTRACT_ADDRESS"); contract != "" {
		options.ContractAddress = contract
	}
	if key := os.Getenv("AYURTRACE_PRIVATE_KEY"); key != "" {
		options.PrivateKey = key
	}
	if secret := os.Getenv("AYURTRACE_JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}

	return options
}
