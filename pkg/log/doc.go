// Package log exposes the structured logging interface used by walletscope
// and ready-made implementations.
//
// # Usage
//
// Use the zerolog adapter:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//	client, err := walletscope.New(ctx, cfg, walletscope.WithLogger(logger))
//
// Or the console logger used by the CLI:
//
//	logger := log.NewConsoleLogger(zerolog.InfoLevel)
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
