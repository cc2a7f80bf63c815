// Package config loads env-tagged configuration structs.
//
// Load parses the process environment into a caller-owned struct using
// github.com/caarlos0/env, optionally after loading .env files with
// github.com/joho/godotenv. There is no package-level cache: the process
// entrypoint loads its configuration once and hands sub-structs to the
// constructors that need them.
package config
