package errx

import (
	"fmt"
	"slices"
)

// 工厂函数约束：纯函数、无 I/O、同参同结果；technical 与 user 文案分开撰写。

// ---- FileSystem ----

func FileNotFound(path string) *Error {
	return New(KindFileSystem,
		fmt.Sprintf("File not found: %s", path),
		"The requested resource could not be found. Please contact your administrator.",
		F("file_path", path),
		F("error_type", "file_not_found"),
	)
}

func ReadFailed(path, reason string) *Error {
	msg := fmt.Sprintf("Failed to read file: %s", path)
	if reason != "" {
		msg += fmt.Sprintf(" (%s)", reason)
	}
	return New(KindFileSystem, msg,
		"Unable to read the requested file. Please contact your administrator.",
		F("file_path", path),
		F("error_type", "read_failed"),
		F("reason", reason),
	)
}

func InvalidPath(path string) *Error {
	return New(KindFileSystem,
		fmt.Sprintf("Invalid file path: %s", path),
		"The requested file path is invalid. Please contact your administrator.",
		F("file_path", path),
		F("error_type", "invalid_path"),
	)
}

// ---- DataValidation ----

// InvalidEnumValue 是严格白名单校验失败的通用形态。
func InvalidEnumValue(field, provided string, allowed []string) *Error {
	return New(KindValidation,
		fmt.Sprintf("Invalid value for %s: %s", field, provided),
		"The selected value is not allowed. Please choose from the available options.",
		F("field", field),
		F("provided_value", provided),
		F("valid_values", slices.Clone(allowed)),
		F("error_type", "invalid_"+field),
	)
}

func InvalidProfile(provided string, allowed []string) *Error {
	return New(KindValidation,
		fmt.Sprintf("Invalid profile: %s", provided),
		"Invalid profile selected. Please choose from the available assessment profiles.",
		F("field", "profile"),
		F("provided_value", provided),
		F("valid_values", slices.Clone(allowed)),
		F("error_type", "invalid_profile"),
	)
}

func InvalidLOB(provided string, allowed []string) *Error {
	return New(KindValidation,
		fmt.Sprintf("Invalid LOB: %s", provided),
		"Invalid line of business selected. Please choose from the available options.",
		F("field", "lob"),
		F("provided_value", provided),
		F("valid_values", slices.Clone(allowed)),
		F("error_type", "invalid_lob"),
	)
}

func InvalidFramework(provided string, allowed []string) *Error {
	return New(KindValidation,
		fmt.Sprintf("Invalid framework: %s", provided),
		"Invalid compliance framework selected. Please choose from the available options.",
		F("field", "framework"),
		F("provided_value", provided),
		F("valid_values", slices.Clone(allowed)),
		F("error_type", "invalid_framework"),
	)
}

// ---- StructuredDocument ----

// DecodeFailed 携带解码器原生错误码（偏移/行号）与原文，只进日志和管理员区块。
func DecodeFailed(path string, nativeCode int64, nativeMsg string) *Error {
	return New(KindDocument,
		fmt.Sprintf("Structured document decode failed for file %s: %s", path, nativeMsg),
		"Configuration error. The system configuration file is malformed. Please contact your administrator.",
		F("file_path", path),
		F("json_error_code", nativeCode),
		F("json_error_message", nativeMsg),
		F("error_type", "decode_failed"),
	)
}

func InvalidStructure(path, reason string) *Error {
	return New(KindDocument,
		fmt.Sprintf("Invalid structured document in file %s: %s", path, reason),
		"Configuration error. The system configuration file has an invalid structure. Please contact your administrator.",
		F("file_path", path),
		F("reason", reason),
		F("error_type", "invalid_structure"),
	)
}

// ---- Configuration ----

func MissingKey(key string) *Error {
	return New(KindConfig,
		fmt.Sprintf("Missing configuration key: %s", key),
		"System configuration error. Please contact your administrator.",
		F("config_key", key),
		F("error_type", "missing_key"),
	)
}

func InvalidType(key, expected, actual string) *Error {
	return New(KindConfig,
		fmt.Sprintf("Invalid type for configuration key %s: expected %s, got %s", key, expected, actual),
		"System configuration error. Please contact your administrator.",
		F("config_key", key),
		F("expected_type", expected),
		F("actual_type", actual),
		F("error_type", "invalid_type"),
	)
}

// ---- Profile ----

func ProfileExists(name string) *Error {
	return New(KindProfile,
		fmt.Sprintf("Profile '%s' already exists", name),
		"A profile with this name already exists. Please choose a different name.",
		F("profile", name),
		F("error_type", "profile_exists"),
	)
}

func InvalidProfileName(name, reason string) *Error {
	return New(KindProfile,
		fmt.Sprintf("Invalid profile name: %s", reason),
		"Profile name is invalid. Use only letters, numbers, and underscores.",
		F("profile", name),
		F("reason", reason),
		F("error_type", "invalid_name"),
	)
}

func GenerationFailed(name, step string) *Error {
	return New(KindProfile,
		fmt.Sprintf("Profile generation failed at step: %s", step),
		"Failed to create profile. Changes have been rolled back.",
		F("profile", name),
		F("step", step),
		F("error_type", "generation_failed"),
	)
}

func FileWriteFailed(path, reason string) *Error {
	return New(KindProfile,
		fmt.Sprintf("Failed to write file '%s': %s", path, reason),
		"Could not create profile file. Please check permissions.",
		F("file", path),
		F("reason", reason),
		F("error_type", "write_failed"),
	)
}

func BackupFailed(path string) *Error {
	return New(KindProfile,
		fmt.Sprintf("Failed to create backup of '%s'", path),
		"Could not backup system files. Operation aborted.",
		F("file", path),
		F("error_type", "backup_failed"),
	)
}

// ---- Generic ----

// Unclassified 包装不属于以上任何分类的失败。
func Unclassified(technical string) *Error {
	return New(KindGeneric, technical, DefaultUserMessage)
}
