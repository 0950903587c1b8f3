package dispatcher

import (
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrorIDPattern 是对外承诺的错误编号格式，运维按它在日志里检索。
var ErrorIDPattern = regexp.MustCompile(`^ERR-\d{8}-[0-9A-F]{8}$`)

// NewErrorID 生成 ERR-<YYYYMMDD>-<8 位大写 hex>，后缀取 uuid v4 的前 4 个随机字节。
func NewErrorID(now time.Time) string {
	u := uuid.New()
	return "ERR-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
