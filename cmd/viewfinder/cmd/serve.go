package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	contentinterfaces "Viewfinder/internal/content/interfaces"
	"Viewfinder/internal/shared/config"
	"Viewfinder/internal/shared/dispatcher"
	"Viewfinder/internal/shared/logs"
	transporthttp "Viewfinder/internal/shared/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logs.Sync()
	logs.Info("config loaded", zap.String("file", config.Dump()))

	disp := dispatcher.New(d.log, newRenderer(config.Conf.ErrorPages.TemplateDir))

	host := config.Conf.HTTPServer.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, config.Conf.HTTPServer.Port)
	httpServer := transporthttp.NewHttpServer(addr, nil, d.log, disp.Middleware())
	httpServer.Register(contentinterfaces.New(d.content))

	if err := config.Watch(func(e fsnotify.Event) {
		logs.Warn("configuration file changed, restart required to apply",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()),
		)
	}); err != nil {
		logs.Warn("config watch disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http server start failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logs.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logs.Error("server exited", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newRenderer 配置了模板目录时优先使用目录内模板，缺失的回落到内置模板。
func newRenderer(dir string) *dispatcher.TemplateRenderer {
	layers := []fs.FS{dispatcher.BuiltinTemplates()}
	if dir != "" {
		layers = append([]fs.FS{os.DirFS(dir)}, layers...)
	}
	r := dispatcher.NewTemplateRenderer(layers...)
	for name, err := range r.Missing() {
		logs.Warn("error template unavailable", zap.String("template", name), zap.Error(err))
	}
	return r
}
