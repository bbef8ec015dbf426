package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler on stdout
	BackendZap Backend = "zap" // zap JSON core behind slog, sampled
)

type Config struct {
	// Common attributes stamped on every record.
	Service    string
	Version    string
	InstanceID string

	// Output control.
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// Zap burst sampling.
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}
