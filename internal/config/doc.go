// Package config loads wikipath settings from defaults, an optional YAML
// file and WIKIPATH_* environment variables.
//
// Precedence, highest first:
//
//	command-line flags bound by the CLI
//	environment (WIKIPATH_SEARCH_USE_BFS, WIKIPATH_DB_PATH, ...)
//	config file (--config, or .wikipath.yaml in $HOME or the working directory)
//	built-in defaults
//
// Example file:
//
//	search:
//	  word_uniqueness: true
//	  neighbors_to_check: 5
//	  use_bfs: false
//	  max_steps: 500
//	  timeout: 5m
//	source:
//	  kind: wikipedia
//	cache:
//	  db_path: ~/.wikipath/wikipath.db
//	  ttl: 24h
//	log:
//	  level: info
//	  format: text
package config
