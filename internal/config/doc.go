// Package config loads example program settings from the environment and an
// optional .env file.
package config
