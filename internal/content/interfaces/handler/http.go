package handler

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"Viewfinder/internal/content/app"
)

// HttpHandler 只负责取参和输出；失败一律交给错误分发中间件。
type HttpHandler struct {
	svc *app.ContentService
}

func NewHttpHandler(svc *app.ContentService) *HttpHandler {
	return &HttpHandler{svc: svc}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/lob/:lob", h.LOB)
	group.GET("/frameworks", h.Frameworks)
	group.GET("/frameworks/:name", h.Framework)
	group.GET("/controls/:profile", h.Controls)
	group.GET("/profiles", h.Profiles)
}

func (h *HttpHandler) LOB(c *gin.Context) {
	page, err := h.svc.LOBPage(c.Param("lob"), c.Query("profile"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(nethttp.StatusOK, "text/html; charset=utf-8", page)
}

func (h *HttpHandler) Frameworks(c *gin.Context) {
	list, err := h.svc.Frameworks(c.QueryArray("framework"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"frameworks": list})
}

func (h *HttpHandler) Framework(c *gin.Context) {
	page, err := h.svc.FrameworkPage(c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(nethttp.StatusOK, "text/html; charset=utf-8", page)
}

func (h *HttpHandler) Controls(c *gin.Context) {
	controls, err := h.svc.LoadControls(c.Param("profile"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, controls)
}

func (h *HttpHandler) Profiles(c *gin.Context) {
	profiles, err := h.svc.Profiles()
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"profiles": profiles})
}
