package bolt

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/options"
)

const (
	// DefaultPath is the database location used when VFSMOUNT_DB_PATH is not set
	DefaultPath = "~/.vfsmount/mounts.db"

	// DefaultLockTimeout bounds how long Open waits for another process holding the database
	DefaultLockTimeout = 30 * time.Second

	// EnvDBPath names the environment variable overriding DefaultPath
	EnvDBPath = "VFSMOUNT_DB_PATH"

	optionNameClientFactory = "clientFactory"
	optionNameSecretFunc    = "secretFunc"
	optionNameLogger        = "logger"
)

// Options contains options necessary to open the database
type Options struct {
	// Path holds the database file path.  A leading ~ is expanded to the user's home directory.
	Path string

	// LockTimeout holds how long to wait for the database file lock.  Zero waits forever.
	LockTimeout time.Duration
}

// NewOptions returns Options populated from the environment
func NewOptions() Options {
	o := Options{
		Path:        os.Getenv(EnvDBPath),
		LockTimeout: DefaultLockTimeout,
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	return o
}

// WithClientFactory returns clientFactoryOpt implementation of options.Option
//
// WithClientFactory is used to explicitly specify how container clients are created, for instance to return a mock.
func WithClientFactory(f host.ClientFactory) options.Option[Host] {
	return &clientFactoryOpt{factory: f}
}

type clientFactoryOpt struct {
	factory host.ClientFactory
}

// Apply applies the client factory to the host
func (o *clientFactoryOpt) Apply(h *Host) {
	h.clientFactory = o.factory
}

// OptionName returns the name of the option
func (o *clientFactoryOpt) OptionName() string {
	return optionNameClientFactory
}

// WithSecretFunc returns secretFuncOpt implementation of options.Option
//
// WithSecretFunc is used to supply client secrets for mounts this Host did not create itself.
func WithSecretFunc(f SecretFunc) options.Option[Host] {
	return &secretFuncOpt{f: f}
}

type secretFuncOpt struct {
	f SecretFunc
}

// Apply applies the secret func to the host
func (o *secretFuncOpt) Apply(h *Host) {
	h.secretFunc = o.f
}

// OptionName returns the name of the option
func (o *secretFuncOpt) OptionName() string {
	return optionNameSecretFunc
}

// WithLogger returns loggerOpt implementation of options.Option
func WithLogger(l logrus.FieldLogger) options.Option[Host] {
	return &loggerOpt{logger: l}
}

type loggerOpt struct {
	logger logrus.FieldLogger
}

// Apply applies the logger to the host
func (o *loggerOpt) Apply(h *Host) {
	h.logger = o.logger
}

// OptionName returns the name of the option
func (o *loggerOpt) OptionName() string {
	return optionNameLogger
}
