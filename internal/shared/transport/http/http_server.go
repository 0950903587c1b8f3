package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"Viewfinder/internal/shared/transport/http/middleware"
	"Viewfinder/modules/kit/logx"
)

type Server struct {
	engine *gin.Engine
	group  *gin.RouterGroup
	srv    *nethttp.Server
}

// NewHttpServer 组装 gin 引擎：访问日志在最外层，随后是调用方传入的中间件（错误分发）。
// 不挂 gin.Recovery，panic 由错误分发中间件统一处理。
func NewHttpServer(addr string, engine *gin.Engine, logger logx.Logger, mws ...gin.HandlerFunc) *Server {
	if engine == nil {
		engine = gin.New()
	}
	engine.Use(middleware.AccessLog(logger))
	engine.Use(mws...)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		engine: engine,
		group:  engine.Group(""),
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start 启动 HTTP 服务（阻塞）。关闭时会返回 net/http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Group() *gin.RouterGroup {
	return s.group
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Handler() nethttp.Handler {
	return s.srv.Handler
}

// Registrar 由各业务模块实现，向 HTTP 路由组注册路由。
type Registrar interface {
	HttpRegister(g *gin.RouterGroup)
}

func (s *Server) Register(rs ...Registrar) {
	for _, r := range rs {
		r.HttpRegister(s.group)
	}
}
