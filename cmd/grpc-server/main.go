package main

import (
	"context"
	"flag"
	"net"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"vertice/internal/catalog"
	"vertice/internal/fixtures"
	"vertice/internal/grpcserver"
	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

func main() {
	configPath := flag.String("config", "config.yml", "config file (optional)")
	flag.Parse()

	cfg, err := utils.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	listener, err := net.Listen("tcp", cfg.Grpc.Addr)
	if err != nil {
		log.Fatal("grpc listen failed", zap.String("addr", cfg.Grpc.Addr), zap.Error(err))
	}

	store := catalog.NewStore(fixtures.New(cfg.Data.Location), log.Named("catalog"))
	store.Timeout = cfg.Data.Timeout

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger(log.Named("grpc"))))
	grpcserver.RegisterCatalogServer(grpcServer, grpcserver.NewServer(store))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	log.Info("gRPC server listening", zap.String("addr", cfg.Grpc.Addr), zap.String("service", grpcserver.ServiceName))
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatal("grpc server stopped", zap.Error(err))
	}
}
