package logger

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(str, "")
}

// TestMinimalEncoderNeverDiscardsFields ensures the encoder never silently
// drops log fields. Every field passed in must appear in the output.
func TestMinimalEncoderNeverDiscardsFields(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Now(),
		LoggerName: "test",
		Message:    "Testing field preservation",
	}

	testFields := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.String(FieldTagType, "web.Route"), "tag_type=web.Route"},
		{zap.String(FieldAttribute, "path"), "attribute=path"},
		{zap.Int(FieldDistance, 2), "distance=2"},
		{zap.Int(FieldMappings, 3), "mappings=3"},
		{zap.String(FieldFile, "tags.toml"), "file=tags.toml"},
		{zap.String(FieldFingerprint, "3x9aQ"), "fingerprint=3x9aQ"},
		{zap.Bool("synthesizable", true), "synthesizable=true"},
		{zap.Float64("elapsed_seconds", 0.25), "elapsed_seconds=0.25"},
		{zap.Int32("int32_field", 42), "int32_field=42"},
		{zap.Int64("int64_field", 9999999), "int64_field=9999999"},
		{zap.String("random_field_xyz", "important_data"), "random_field_xyz=important_data"},
		{zap.String("field_with_underscores", "test"), "field_with_underscores=test"},
		{zap.Bool("success", false), "success=false"},
	}

	var allFields []zapcore.Field
	for _, tf := range testFields {
		allFields = append(allFields, tf.field)
	}

	buf, err := encoder.EncodeEntry(entry, allFields)
	if err != nil {
		t.Fatalf("EncodeEntry() error = %v", err)
	}

	output := stripANSI(buf.String())

	for _, tf := range testFields {
		if tf.mustFind == "" {
			continue
		}
		if !strings.Contains(output, tf.mustFind) {
			t.Errorf("EncodeEntry() dropped field: want %q in output\noutput: %s", tf.mustFind, output)
		}
	}
}

func TestMinimalEncoderFormat(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2026, 3, 14, 13, 4, 35, 0, time.UTC),
		LoggerName: "mts.registry",
		Message:    "Built mapping tree",
	}

	buf, err := encoder.EncodeEntry(entry, []zapcore.Field{
		zap.String(FieldTagType, "web.Route"),
	})
	if err != nil {
		t.Fatalf("EncodeEntry() error = %v", err)
	}

	output := stripANSI(buf.String())

	if !strings.Contains(output, "13:04:35") {
		t.Errorf("output missing timestamp: %s", output)
	}
	if !strings.Contains(output, "m.registry") {
		t.Errorf("output missing abbreviated component name: %s", output)
	}
	if !strings.Contains(output, "Built mapping tree") {
		t.Errorf("output missing message: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("output missing trailing newline")
	}
	// INFO level marker is hidden to keep routine output quiet
	if strings.Contains(output, "INFO") {
		t.Errorf("INFO marker should not appear: %s", output)
	}
}

func TestMinimalEncoderLevelMarkers(t *testing.T) {
	tests := []struct {
		level    zapcore.Level
		mustFind string
	}{
		{zapcore.WarnLevel, "WARN"},
		{zapcore.ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.mustFind, func(t *testing.T) {
			encoder := newMinimalEncoder()
			entry := zapcore.Entry{
				Level:   tt.level,
				Time:    time.Now(),
				Message: "something happened",
			}

			buf, err := encoder.EncodeEntry(entry, nil)
			if err != nil {
				t.Fatalf("EncodeEntry() error = %v", err)
			}

			output := stripANSI(buf.String())
			if !strings.Contains(output, tt.mustFind) {
				t.Errorf("output missing %s marker: %s", tt.mustFind, output)
			}
		})
	}
}

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"registry", "registry"},
		{"mts.registry", "m.registry"},
		{"mts.tagset.watcher", "m.tagset.watcher"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := abbreviateName(tt.name); got != tt.want {
			t.Errorf("abbreviateName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMinimalEncoderClone(t *testing.T) {
	encoder := newMinimalEncoder()
	clone := encoder.Clone()

	if clone == nil {
		t.Fatal("Clone() returned nil")
	}

	entry := zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: "from clone",
	}
	buf, err := clone.EncodeEntry(entry, nil)
	if err != nil {
		t.Fatalf("clone EncodeEntry() error = %v", err)
	}
	if !strings.Contains(stripANSI(buf.String()), "from clone") {
		t.Error("clone did not encode entry")
	}
}
