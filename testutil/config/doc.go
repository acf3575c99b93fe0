// Package config provides database connection configurations for tests and
// benchmarks against the dockerized Postgres setups.
package config
