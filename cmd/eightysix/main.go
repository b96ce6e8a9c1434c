package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/config"
	"github.com/justinnewbold/86d-game-sub000/internal/logger"
	"github.com/justinnewbold/86d-game-sub000/internal/server"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	// 加载配置
	cfg, info, cfgErr := config.LoadConfigWithInfo()
	if cfgErr != nil {
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	log, err := logger.New(cfg.Server.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Warn("load config failed, using defaults", zap.Error(cfgErr))
	} else if info.Path != "" {
		log.Info("config loaded", zap.String("path", info.Path))
	}

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr()), zap.Bool("dev", cfg.Server.DevMode))
		if err := srv.Run(); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := srv.Close(); err != nil {
		log.Error("save on exit failed", zap.Error(err))
	}
}
