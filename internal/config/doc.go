// Package config provides configuration structures and loaders for pricewatch.
//
// A Config is assembled once at startup from, in increasing precedence:
// built-in defaults, an optional YAML file (.pricewatch), a dotenv file plus
// the process environment, and finally command line flags. The result is
// validated with Config.Validate and then passed explicitly to the
// components that need it.
package config
