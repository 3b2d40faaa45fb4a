package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/zhugt2019/offgate"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ offgate.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f offgate.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f offgate.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f offgate.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f offgate.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
