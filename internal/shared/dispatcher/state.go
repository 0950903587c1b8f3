package dispatcher

import (
	"time"

	"github.com/gin-gonic/gin"

	"Viewfinder/modules/kit/errx"
)

const stateKey = "viewfinder.dispatch_state"

// Occurrence 是一次已对外呈现的失败。
type Occurrence struct {
	ErrorID   string
	Timestamp time.Time
	Source    *errx.Error
	Fatal     bool
	Response  Response
}

// requestState 记录本请求是否已经渲染过失败页，两条通道共用。
type requestState struct {
	rendered   bool
	occurrence *Occurrence
}

// claim 抢占渲染权：已渲染或 body 已写出时返回 false。
func (s *requestState) claim(w gin.ResponseWriter) bool {
	if s.rendered {
		return false
	}
	s.rendered = true
	return !w.Written()
}

func stateOf(c *gin.Context) *requestState {
	if v, ok := c.Get(stateKey); ok {
		if st, ok := v.(*requestState); ok {
			return st
		}
	}
	st := &requestState{}
	c.Set(stateKey, st)
	return st
}

// OccurrenceFrom 返回本请求已呈现的失败，访问日志用它关联 error_id。
func OccurrenceFrom(c *gin.Context) (*Occurrence, bool) {
	v, ok := c.Get(stateKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*requestState)
	if !ok || st.occurrence == nil {
		return nil, false
	}
	return st.occurrence, true
}
