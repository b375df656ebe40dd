package mocks

import (
	"context"
	"reflect"
	"sync"
	"time"

	"geosynth.app/internal/ports"
)

// LogEntry is one call captured by Logger
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Logger records every call for later assertions
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a recording logger
func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

func (l *Logger) record(level, msg string, fields []ports.Field) {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: m})
}

// Entries returns a copy of everything logged so far
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Find returns entries whose field key equals value
func (l *Logger) Find(key string, value interface{}) []LogEntry {
	var out []LogEntry
	for _, e := range l.Entries() {
		if v, ok := e.Fields[key]; ok && reflect.DeepEqual(v, value) {
			out = append(out, e)
		}
	}
	return out
}

// Metrics counts recorded events by name
type Metrics struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMetrics creates a counting metrics collector
func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[string]int)}
}

func (m *Metrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
}

// Count returns how many times key was recorded, e.g. "hit:country"
func (m *Metrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *Metrics) RecordCacheHit(_ context.Context, namespace string) {
	m.inc("hit:" + namespace)
}

func (m *Metrics) RecordCacheMiss(_ context.Context, namespace string) {
	m.inc("miss:" + namespace)
}

func (m *Metrics) RecordCacheEviction(_ context.Context, reason string) {
	m.inc("eviction:" + reason)
}

func (m *Metrics) RecordCacheOperation(_ context.Context, operation string, _ time.Duration) {
	m.inc("op:" + operation)
}

func (m *Metrics) RecordUpstreamRequest(_ context.Context, provider, operation, outcome string, _ time.Duration) {
	m.inc("upstream:" + provider + ":" + operation + ":" + outcome)
}

func (m *Metrics) RecordUpstreamRetry(_ context.Context, provider, operation string) {
	m.inc("retry:" + provider + ":" + operation)
}

func (m *Metrics) RecordSection(_ context.Context, section, status string) {
	m.inc("section:" + section + ":" + status)
}

// ConfigProvider returns fixed configuration
type ConfigProvider struct {
	Profile ports.ProfileConfig
	Cache   ports.CacheConfig
}

func (c *ConfigProvider) GetProfileConfig() ports.ProfileConfig { return c.Profile }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig     { return c.Cache }

// AllFeatures enables every optional profile section
func AllFeatures() ports.FeatureFlags {
	return ports.FeatureFlags{Economics: true, Weather: true, News: true, Exchange: true, Encyclopedia: true}
}
