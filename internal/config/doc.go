// Package config provides configuration structures and utilities for
// locascan. It defines the scan session options, the structure of the
// .locascan configuration file, and validation for both.
package config
