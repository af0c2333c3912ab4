// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, an optional .env file, CLI flags) with precedence:
// CLI flags > YAML config > environment variables > .env file > defaults. It exposes
// strongly typed settings to the rest of the application.
package config
