package logger

import (
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/deppfellow/tg-miniapp/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	if got := GetPgxTraceLogLevel(zerolog.DebugLevel); got != int(tracelog.LogLevelDebug) {
		t.Errorf("debug: got %d", got)
	}
	if got := GetPgxTraceLogLevel(zerolog.WarnLevel); got != int(tracelog.LogLevelWarn) {
		t.Errorf("warn: got %d", got)
	}
	if got := GetPgxTraceLogLevel(zerolog.Disabled); got != int(tracelog.LogLevelNone) {
		t.Errorf("disabled: got %d", got)
	}
}

func TestLoggerServiceDisabledWithoutLicense(t *testing.T) {
	ls, err := NewLoggerService(config.DefaultObservabilityConfig())
	if err != nil {
		t.Fatalf("NewLoggerService failed: %v", err)
	}
	if ls.GetApplication() != nil {
		t.Error("expected nil New Relic application without licence key")
	}
	ls.Shutdown()

	var nilService *LoggerService
	if nilService.GetApplication() != nil {
		t.Error("nil service should report nil application")
	}
}

func TestWithTraceContextNilTxn(t *testing.T) {
	base := zerolog.Nop()
	got := WithTraceContext(base, nil)
	if got.GetLevel() != base.GetLevel() {
		t.Error("expected logger to be returned unchanged")
	}
}
