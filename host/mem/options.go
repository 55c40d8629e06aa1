package mem

import (
	"github.com/sirupsen/logrus"

	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/options"
)

const (
	optionNameClientFactory = "clientFactory"
	optionNameLogger        = "logger"
)

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
