package errx

import (
	"strings"
	"testing"
	"unicode"
)

func allFactories() map[string]*Error {
	allowed := []string{"Security", "Compliance"}
	return map[string]*Error{
		"FileNotFound":       FileNotFound("/srv/viewfinder/content/lob-finance.html"),
		"ReadFailed":         ReadFailed("/srv/viewfinder/data/controls.json", "permission denied"),
		"ReadFailedNoReason": ReadFailed("/srv/viewfinder/data/controls.json", ""),
		"InvalidPath":        InvalidPath("../../etc/passwd"),
		"InvalidEnumValue":   InvalidEnumValue("framework", "bogus", allowed),
		"InvalidProfile":     InvalidProfile("bogus", allowed),
		"InvalidLOB":         InvalidLOB("bogus", allowed),
		"InvalidFramework":   InvalidFramework("bogus", allowed),
		"DecodeFailed":       DecodeFailed("/srv/viewfinder/data/compliance.json", 42, "invalid character '}' at offset 42"),
		"InvalidStructure":   InvalidStructure("/srv/viewfinder/data/compliance.json", "frameworks must be a list"),
		"MissingKey":         MissingKey("content.lob_dir"),
		"InvalidType":        InvalidType("httpserver.port", "int", "string"),
		"ProfileExists":      ProfileExists("Security"),
		"InvalidProfileName": InvalidProfileName("bad-name", "contains a dash"),
		"GenerationFailed":   GenerationFailed("Sovereign", "write_controls"),
		"FileWriteFailed":    FileWriteFailed("/srv/viewfinder/data/controls-Sovereign.json", "read-only fs"),
		"BackupFailed":       BackupFailed("/srv/viewfinder/data/profiles.json"),
		"Unclassified":       Unclassified("runtime: nil pointer"),
	}
}

// words 把文案切成小写单词序列。
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// sharedRun 返回两段文案最长的公共连续单词数。
func sharedRun(a, b []string) int {
	best := 0
	for i := range a {
		for j := range b {
			n := 0
			for i+n < len(a) && j+n < len(b) && a[i+n] == b[j+n] {
				n++
			}
			best = max(best, n)
		}
	}
	return best
}

func TestFactories_用户文案与技术文案分离(t *testing.T) {
	for name, err := range allFactories() {
		user := err.UserMessage()
		if user == "" {
			t.Fatalf("%s: 用户文案为空", name)
		}
		if strings.Contains(user, err.Msg()) {
			t.Fatalf("%s: 用户文案包含技术文案，user=%q tech=%q", name, user, err.Msg())
		}
		if n := sharedRun(words(user), words(err.Msg())); n > 2 {
			t.Fatalf("%s: 用户文案与技术文案共享 %d 个连续单词，user=%q tech=%q", name, n, user, err.Msg())
		}
		if strings.Contains(user, "/") {
			t.Fatalf("%s: 用户文案疑似包含路径，user=%q", name, user)
		}
	}
}

func TestFactories_纯函数同参同结果(t *testing.T) {
	a, b := allFactories(), allFactories()
	for name := range a {
		if a[name].Error() != b[name].Error() || a[name].UserMessage() != b[name].UserMessage() {
			t.Fatalf("%s: 两次构造结果不同", name)
		}
	}
}

func TestFactories_必带上下文字段(t *testing.T) {
	required := map[Kind][]string{
		KindFileSystem: {"file_path", "error_type"},
		KindValidation: {"field", "provided_value", "valid_values"},
		KindDocument:   {"file_path"},
		KindConfig:     {"config_key"},
	}
	for name, err := range allFactories() {
		for _, key := range required[err.Kind()] {
			if _, ok := err.Fields().Get(key); !ok {
				t.Fatalf("%s: 缺少上下文字段 %s, fields=%v", name, key, err.Fields())
			}
		}
	}
}

func TestInvalidEnumValue_复制白名单(t *testing.T) {
	allowed := []string{"A", "B"}
	err := InvalidEnumValue("profile", "bogus", allowed)
	allowed[0] = "mutated"

	v, _ := err.Fields().Get("valid_values")
	got, ok := v.([]string)
	if !ok || got[0] != "A" {
		t.Fatalf("期望构造时复制白名单，got=%v", v)
	}
	if err.Fields().GetString("provided_value") != "bogus" {
		t.Fatalf("期望 provided_value == bogus")
	}
}

func TestDecodeFailed_携带解码器原文(t *testing.T) {
	err := DecodeFailed("/data/compliance.json", 17, "unexpected end of JSON input")
	if v, _ := err.Fields().Get("json_error_code"); v != int64(17) {
		t.Fatalf("期望 json_error_code == 17, got=%v", v)
	}
	if err.Fields().GetString("json_error_message") != "unexpected end of JSON input" {
		t.Fatalf("期望保留解码器原文")
	}
	if strings.Contains(err.UserMessage(), "unexpected") {
		t.Fatalf("用户文案不应包含解码器原文")
	}
}

func TestDocumentFactories_技术文案不绑定格式(t *testing.T) {
	for _, err := range []*Error{
		DecodeFailed("/etc/viewfinder/conf.yaml", 3, "did not find expected key"),
		InvalidStructure("/etc/viewfinder/profiles.toml", "top-level value must be a table"),
	} {
		if strings.Contains(err.Msg(), "JSON") {
			t.Fatalf("期望 YAML/TOML 的技术文案不出现 JSON，实际 %q", err.Msg())
		}
		if !strings.Contains(strings.ToLower(err.Msg()), "structured document") {
			t.Fatalf("期望技术文案写明 structured document，实际 %q", err.Msg())
		}
	}
}
