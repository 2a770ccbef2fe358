package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/cuihairu/smshook/internal/telemetry"
	"github.com/cuihairu/smshook/services/ingest/internal/config"
	"github.com/cuihairu/smshook/services/ingest/internal/handler"
	"github.com/cuihairu/smshook/services/ingest/internal/middleware"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
)

var configFile = flag.String("f", "etc/ingest.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())
	logx.Must(c.ApplyLogLevel(os.Getenv("LOG_LEVEL")))
	logx.Must(c.Validate())

	provider, err := telemetry.NewProvider(context.Background(), c.Otel)
	logx.Must(err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logx.Errorf("telemetry shutdown: %v", err)
		}
	}()

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(c)
	logx.Must(err)
	defer ctx.Close()

	server.Use(middleware.NewRequestIDMiddleware().Handle)
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting ingest server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
