// Package logger provides structured logging for pipekit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The process package logs
// every spawn and exit at debug level through a logger obtained from Get.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Debug("stage spawned", logger.Fields(logger.FieldStage, 0, logger.FieldPid, 4242))
package logger
