package errx

// Kind 是错误分类的封闭枚举，分发层按 Kind 做穷举 switch 选模板。
//
// 约束：
// - 新增 Kind 必须同时补 Code()、String() 与分发层的模板映射
// - 业务侧不要自造 Kind，统一走本包工厂函数
type Kind uint8

const (
	// KindGeneric 表示未归类错误（兜底）。
	KindGeneric Kind = iota
	// KindFileSystem 表示文件不存在、读失败、路径非法。
	KindFileSystem
	// KindValidation 表示用户输入不在白名单内（严格校验）。
	KindValidation
	// KindDocument 表示结构化文档（JSON/YAML/TOML）解析失败或结构不符。
	KindDocument
	// KindConfig 表示配置缺失或类型不符。
	KindConfig
	// KindProfile 表示 profile 创建/生成/落盘相关错误。
	KindProfile
)

// Code 是错误码（对外语义的稳定标识，与人读文案无关）。
type Code string

const (
	CodeGeneric    Code = "VIEWFINDER_ERROR"
	CodeFileSystem Code = "FILE_SYSTEM_ERROR"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeDocument   Code = "JSON_ERROR"
	CodeConfig     Code = "CONFIG_ERROR"
	CodeProfile    Code = "PROFILE_ERROR"
)

// DefaultUserMessage 是调用方未提供用户文案时的兜底文案。
const DefaultUserMessage = "An unexpected error occurred. Please try again or contact support."

// Kinds 按声明顺序列出全部 Kind，测试与穷举校验使用。
var Kinds = []Kind{KindGeneric, KindFileSystem, KindValidation, KindDocument, KindConfig, KindProfile}

func (k Kind) Code() Code {
	switch k {
	case KindFileSystem:
		return CodeFileSystem
	case KindValidation:
		return CodeValidation
	case KindDocument:
		return CodeDocument
	case KindConfig:
		return CodeConfig
	case KindProfile:
		return CodeProfile
	default:
		return CodeGeneric
	}
}

func (k Kind) String() string {
	switch k {
	case KindFileSystem:
		return "file_system"
	case KindValidation:
		return "data_validation"
	case KindDocument:
		return "structured_document"
	case KindConfig:
		return "configuration"
	case KindProfile:
		return "profile"
	default:
		return "generic"
	}
}

// 哨兵错误：只用于 errors.Is 按 code 判断语义，禁止直接当作返回值携带上下文。
var (
	ErrGeneric    = New(KindGeneric, "unclassified error", "")
	ErrFileSystem = New(KindFileSystem, "file system error", "")
	ErrValidation = New(KindValidation, "validation error", "")
	ErrDocument   = New(KindDocument, "structured document error", "")
	ErrConfig     = New(KindConfig, "configuration error", "")
	ErrProfile    = New(KindProfile, "profile error", "")
)
