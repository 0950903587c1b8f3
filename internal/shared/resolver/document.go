package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"Viewfinder/modules/kit/errx"
)

// Document 是一次成功解码的结构化文件，解码失败时不会产生任何部分数据。
type Document struct {
	Path string
	Data map[string]any
}

// LoadStructuredDocument 按扩展名选择解码器：.json / .yaml / .yml / .toml。
func (r *Resolver) LoadStructuredDocument(path string) (*Document, error) {
	r.log.Debug("loading structured document", zap.String("file_path", path))

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errx.FileNotFound(path)
		}
		return nil, errx.ReadFailed(path, err.Error())
	}

	data, err := decode(path, raw)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Data: data}, nil
}

func decode(path string, raw []byte) (map[string]any, error) {
	var out map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			var se *json.SyntaxError
			if errors.As(err, &se) {
				return nil, errx.DecodeFailed(path, se.Offset, se.Error())
			}
			return nil, errx.DecodeFailed(path, 0, err.Error())
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errx.InvalidStructure(path, "top-level value must be an object")
		}
		out = m
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &out); err != nil {
			return nil, errx.DecodeFailed(path, yamlLine(err), err.Error())
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &out); err != nil {
			var pe toml.ParseError
			if errors.As(err, &pe) {
				return nil, errx.DecodeFailed(path, int64(pe.Position.Line), pe.Message)
			}
			return nil, errx.DecodeFailed(path, 0, err.Error())
		}
	default:
		return nil, errx.InvalidStructure(path, fmt.Sprintf("unsupported document type %q", ext))
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func yamlLine(err error) int64 {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.ParseInt(m[1], 10, 64)
	return n
}

// Decode 把文档映射到带 mapstructure tag 的结构体，类型不符即 InvalidStructure。
func (d *Document) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errx.InvalidStructure(d.Path, err.Error())
	}
	if err := dec.Decode(d.Data); err != nil {
		return errx.InvalidStructure(d.Path, err.Error())
	}
	return nil
}

// Require 按点分 key 取值，缺失返回 MissingKey。
func (d *Document) Require(key string) (any, error) {
	var cur any = d.Data
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, errx.MissingKey(key).WithField("file_path", d.Path)
		}
		if cur, ok = m[part]; !ok {
			return nil, errx.MissingKey(key).WithField("file_path", d.Path)
		}
	}
	return cur, nil
}

// String 取字符串值，类型不符返回 InvalidType。
func (d *Document) String(key string) (string, error) {
	v, err := d.Require(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errx.InvalidType(key, "string", typeName(v)).WithField("file_path", d.Path)
	}
	return s, nil
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).Kind().String()
}
