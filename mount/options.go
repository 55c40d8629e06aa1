package mount

import (
	"github.com/sirupsen/logrus"

	"github.com/c2fo/vfsmount/options"
)

const optionNameLogger = "logger"

// WithLogger returns loggerOpt implementation of options.Option
//
// WithLogger is used to direct the Manager's mount and unmount events to a specific logger.
func WithLogger(l logrus.FieldLogger) options.Option[Manager] {
	return &loggerOpt{logger: l}
}

type loggerOpt struct {
	logger logrus.FieldLogger
}

// Apply applies the logger to the manager
func (o *loggerOpt) Apply(m *Manager) {
	m.logger = o.logger
}

// OptionName returns the name of the option
func (o *loggerOpt) OptionName() string {
	return optionNameLogger
}
