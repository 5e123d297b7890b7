// Package config loads gatefix's static configuration: session defaults,
// logging, metrics, tracing, and the control-plane database, grounded on
// the teacher's pkg/config package (spf13/viper + mitchellh/mapstructure
// decoding, go-playground/validator/v10 validation, file < env < flag
// precedence).
package config

import (
	"time"

	"github.com/coriolisfix/gatefix/pkg/api"
	"github.com/coriolisfix/gatefix/pkg/controlplane/store"
)

// Config is gatefix's complete static configuration.
//
// Configuration sources, in order of precedence:
//  1. CLI flags (spf13/cobra, highest priority)
//  2. Environment variables (GATEFIX_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and continuous
	// profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection and the /metrics route.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ControlPlane configures the identifying-tuple <-> session_id store
	// and the registered-library roster.
	ControlPlane store.Config `mapstructure:"controlplane" yaml:"controlplane"`

	// API configures the admin REST surface.
	API api.Config `mapstructure:"api" yaml:"api"`

	// Session carries every per-session and per-engine tuning knob named
	// in the external interfaces.
	Session SessionConfig `mapstructure:"session" yaml:"session"`

	// ControlPlaneSecret signs and validates the golang-jwt/jwt/v5 HS256
	// token a Library presents on CONNECT(library_id). Sourced from
	// GATEFIX_CONTROLPLANE_SECRET; never written to a YAML file.
	ControlPlaneSecret string `mapstructure:"controlplane_secret" validate:"required" yaml:"-"`
}

// SessionConfig carries the session and engine tuning knobs.
type SessionConfig struct {
	// ReplyTimeout bounds how long a submitted operation may remain
	// PENDING before reply.Registry.Sweep marks it TIMED_OUT.
	ReplyTimeout time.Duration `mapstructure:"reply_timeout_ms" validate:"required,gt=0" yaml:"reply_timeout_ms"`

	// KeepAliveInterval is the default FIX HeartBtInt / iLink3 keep-alive
	// interval offered during session negotiation.
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval_ms" validate:"required,gt=0" yaml:"keep_alive_interval_ms"`

	// LibraryTimeout is how long an owning Library may go without a
	// heartbeat before the Engine treats its sessions as unowned.
	LibraryTimeout time.Duration `mapstructure:"library_timeout_ms" validate:"required,gt=0" yaml:"library_timeout_ms"`

	// RetransmitBatchMax bounds how many messages one retransmit request
	// asks the peer for; a larger gap is split into several requests.
	RetransmitBatchMax int `mapstructure:"retransmit_batch_max" validate:"required,gt=0" yaml:"retransmit_batch_max"`

	// NegotiateResendMax bounds how many times an unanswered handshake
	// message is resent before the handshake fails with HANDSHAKE_TIMEOUT.
	NegotiateResendMax int `mapstructure:"negotiate_resend_max" validate:"required,gt=0" yaml:"negotiate_resend_max"`

	// LogAnyMessages enables verbose per-message session-layer logging;
	// off by default since it dominates hot-path latency.
	LogAnyMessages bool `mapstructure:"log_any_messages" yaml:"log_any_messages"`

	// ApplicationHeartbeatInterval is an application-level heartbeat
	// interval, separate from the session keep-alive. No package reads
	// this field, and the Framer emits no application-level heartbeat.
	ApplicationHeartbeatInterval time.Duration `mapstructure:"application_heartbeat_interval" validate:"omitempty,gt=0" yaml:"application_heartbeat_interval"`

	// ArchiveBackupLocation names a backup location; pkg/archive's
	// ParseLocation parses its s3://bucket/prefix form. No package reads
	// this field, and reset_session_ids takes no backup.
	ArchiveBackupLocation string `mapstructure:"archive_backup_location" yaml:"archive_backup_location"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing and
// continuous profiling.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics, which gatefixd serves at
// /metrics on the admin API's port; Port is not read. When Enabled is
// false, no metrics are collected and pkg/metrics's constructors are all
// no-ops.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}
