// Package nlog is the core's structured-logging façade: every other package
// logs through here rather than importing logrus directly. Unlike aistore's
// own cmn/nlog (which backs its wrapper with a glog-derived sink), this
// wrapper backs onto logrus directly.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package nlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the global log level; called once at startup from
// cmd/meshd.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Infoln(args ...any)                { log.Infoln(args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }
func Errorln(args ...any)               { log.Errorln(args...) }

// Fatalf logs and terminates the process — used only for the fatal error
// kinds named by the core's error taxonomy (PreconditionViolation,
// GeometryOverflow, ParticleOutOfRange).
func Fatalf(format string, args ...any) { log.Fatalf(format, args...) }

// WithFields returns a logrus.Entry for callers that want to attach
// structured context (block name, refresh id) to a burst of related lines.
func WithFields(fields map[string]any) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}
