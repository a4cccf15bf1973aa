package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Environment variables recognised by pricewatch.
const (
	EnvPriceStoreAddress = "SERVER_URL"
	EnvNotifyCredential  = "TELEGRAM_BOT_TOKEN"
	EnvNotifyDestination = "TELEGRAM_CHAT_ID"
	EnvReportFile        = "PRICEWATCH_REPORT"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ReadEnvFile reads variables from a dotenv file.
// A missing file is not an error and yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return vars, nil
}

// EnvLookup returns a LookupFunc that prefers the process environment and
// falls back to the given dotenv variables.
func EnvLookup(fileVars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
}

// ApplyEnv overlays environment variables onto c.
// Empty values are ignored so an exported but blank variable keeps the default.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	apply := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	apply(EnvPriceStoreAddress, &c.PriceStoreAddress)
	apply(EnvNotifyCredential, &c.NotifyCredential)
	apply(EnvNotifyDestination, &c.NotifyDestination)
	apply(EnvReportFile, &c.ReportFile)
}

// EnvTemplate returns dotenv content with every recognised variable that
// holds a credential or endpoint. Credentials are left empty.
func EnvTemplate() (string, error) {
	return godotenv.Marshal(map[string]string{
		EnvPriceStoreAddress: DefaultPriceStoreAddress,
		EnvNotifyCredential:  "",
		EnvNotifyDestination: "",
	})
}
