// Package config defines the application configuration structure and loading
// logic. Settings come from an optional YAML file and OWLINGO_-prefixed
// environment variables, with the environment taking precedence.
package config
