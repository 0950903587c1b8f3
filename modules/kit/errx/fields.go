package errx

import "go.uber.org/zap/zapcore"

// Field 是错误上下文中的一个键值对。值只允许标量或切片（日志序列化用）。
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Fields 是有序上下文：日志里按写入顺序输出，同名 key 以后写为准但保留首次位置。
type Fields []Field

// Get 返回 key 对应的值。
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString 只在值为 string 时返回。
func (fs Fields) GetString(key string) string {
	v, ok := fs.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Keys 按顺序返回全部 key。
func (fs Fields) Keys() []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Key)
	}
	return out
}

// Map 返回无序拷贝，兼容只认 map 的调用方。
func (fs Fields) Map() map[string]any {
	if len(fs) == 0 {
		return nil
	}
	out := make(map[string]any, len(fs))
	for _, f := range fs {
		out[f.Key] = f.Value
	}
	return out
}

func (fs Fields) set(key string, value any) Fields {
	for i := range fs {
		if fs[i].Key == key {
			fs[i].Value = value
			return fs
		}
	}
	return append(fs, Field{Key: key, Value: value})
}

func (fs Fields) clone() Fields {
	if len(fs) == 0 {
		return nil
	}
	out := make(Fields, len(fs))
	copy(out, fs)
	return out
}

// MarshalLogObject 让 zap.Object 按顺序输出上下文。
func (fs Fields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range fs {
		switch v := f.Value.(type) {
		case string:
			enc.AddString(f.Key, v)
		case int:
			enc.AddInt(f.Key, v)
		case int64:
			enc.AddInt64(f.Key, v)
		case bool:
			enc.AddBool(f.Key, v)
		default:
			if err := enc.AddReflected(f.Key, v); err != nil {
				return err
			}
		}
	}
	return nil
}
