package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with scheduling-specific helpers
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance
func New(level string) *Logger {
	log := logrus.New()

	// Set log level
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	// Set output format
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	// Set output destination
	log.SetOutput(os.Stdout)

	return &Logger{Logger: log}
}

// WithFields creates a new logger entry with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithError creates a new logger entry with an error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

// WithRunID creates a new logger entry with a scheduling run ID field
func (l *Logger) WithRunID(runID string) *logrus.Entry {
	return l.Logger.WithField("run_id", runID)
}

// WithDoctor creates a new logger entry with a doctor ID field
func (l *Logger) WithDoctor(doctorID string) *logrus.Entry {
	return l.Logger.WithField("doctor_id", doctorID)
}

// WithSlot creates a new logger entry with a slot index field
func (l *Logger) WithSlot(slotIndex int) *logrus.Entry {
	return l.Logger.WithField("slot_index", slotIndex)
}

// WithComponent creates a new logger entry with component name field
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// SolverRun logs the outcome of one scheduling run with structured fields
func (l *Logger) SolverRun(runID, status string, nodes, backtracks int64, durationMS int64, details map[string]interface{}) {
	entry := l.Logger.WithFields(logrus.Fields{
		"solver":      true,
		"run_id":      runID,
		"status":      status,
		"nodes":       nodes,
		"backtracks":  backtracks,
		"duration_ms": durationMS,
		"details":     details,
	})

	if status == "infeasible" {
		entry.Warn("Scheduling run finished without a feasible schedule")
	} else {
		entry.Info("Scheduling run finished")
	}
}
