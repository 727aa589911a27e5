package emit

import "go.uber.org/zap"

// ZapEmitter forwards events to a zap logger so engine events share the
// application's structured log stream.
type ZapEmitter struct {
	log *zap.Logger
}

// NewZapEmitter creates a ZapEmitter. A nil logger defaults to zap.NewNop.
func NewZapEmitter(log *zap.Logger) *ZapEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapEmitter{log: log}
}

// Emit logs the event at info level with structured fields.
func (z *ZapEmitter) Emit(event Event) {
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.Int("step", event.Step),
		zap.String("node_id", event.NodeID),
	}
	for k, v := range event.Meta {
		fields = append(fields, zap.Any(k, v))
	}
	z.log.Info(event.Msg, fields...)
}
