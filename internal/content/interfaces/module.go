package interfaces

import (
	"github.com/gin-gonic/gin"

	"Viewfinder/internal/content/app"
	"Viewfinder/internal/content/interfaces/handler"
	transporthttp "Viewfinder/internal/shared/transport/http"
)

type Module struct {
	httpHandler *handler.HttpHandler
}

func New(svc *app.ContentService) *Module {
	return &Module{httpHandler: handler.NewHttpHandler(svc)}
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ transporthttp.Registrar = (*Module)(nil)
