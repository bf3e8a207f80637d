package logger

import "go.uber.org/zap"

// PortAdapter satisfies ports.Logger (defined over interface{} fields, so
// domain/application code never imports zap directly) by forwarding to the
// package-level zap logger as alternating key/value pairs.
type PortAdapter struct{}

// NewPortAdapter builds a PortAdapter over the package-level logger.
func NewPortAdapter() PortAdapter { return PortAdapter{} }

func (PortAdapter) Debug(msg string, fields ...interface{}) { Debug(msg, toZapFields(fields)...) }
func (PortAdapter) Info(msg string, fields ...interface{})  { Info(msg, toZapFields(fields)...) }
func (PortAdapter) Warn(msg string, fields ...interface{})  { Warn(msg, toZapFields(fields)...) }
func (PortAdapter) Error(msg string, fields ...interface{}) { Error(msg, toZapFields(fields)...) }

// toZapFields treats fields as alternating key, value pairs — the
// convention callers of ports.Logger use, mirroring zap's SugaredLogger.
func toZapFields(fields []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		out = append(out, zap.Any(key, fields[i+1]))
	}
	return out
}
