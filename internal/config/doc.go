// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for interpolation. The deployment
// variables (POSTGRES_HOST, DB_POOL_MAX, SILVER_SCHEMA and friends) are applied
// on top of the file, then defaults fill whatever is still unset.
package config
