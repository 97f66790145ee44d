// cmd/server wires the stock-transition engine to its transports: REST
// (C4), RPC (C5), the optional Kafka order listener, and the optional
// Prometheus metrics endpoint. Wiring order and shutdown shape: config ->
// logger -> postgres -> redis -> engine -> kafka listener -> metrics ->
// servers -> graceful shutdown.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/invsvc/inventory-service/config"
	"github.com/invsvc/inventory-service/internal/inventory/engine"
	"github.com/invsvc/inventory-service/internal/inventory/listener"
	"github.com/invsvc/inventory-service/internal/inventory/query"
	"github.com/invsvc/inventory-service/internal/inventory/repository"
	"github.com/invsvc/inventory-service/internal/platform/events"
	"github.com/invsvc/inventory-service/internal/platform/lock"
	"github.com/invsvc/inventory-service/internal/platform/logger"
	"github.com/invsvc/inventory-service/internal/platform/metrics"
	"github.com/invsvc/inventory-service/internal/platform/storage/postgres"
	"github.com/invsvc/inventory-service/internal/rest"
	"github.com/invsvc/inventory-service/internal/rpc"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logCfg := &logger.Config{
		IsDevelopment:     cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	log := logger.New(logCfg)
	defer log.Sync()

	db, err := postgres.Connect(cfg.Postgres)
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	store := repository.NewPGStore(db)

	var (
		redisClient  *redis.Client
		sink         events.Sink
		advisoryLock engine.AdvisoryLock
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, falling back to log sink and row-lock-only concurrency", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
			sink = events.NewMultiSink(log, events.NewLogSink(log), events.NewRedisSink(redisClient, log))
			advisoryLock = lock.NewRedisLock(redisClient)
		}
	}
	if sink == nil {
		sink = events.NewLogSink(log)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	eng := engine.New(store, sink, advisoryLock, log)
	reporter := query.New(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Kafka.Brokers) > 0 {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer reader.Close()
		orderListener := listener.NewOrderEventListener(reader, eng, log)
		go orderListener.Start(ctx)
		log.Info("order event listener started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	if cfg.Metrics.Port != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			addr := withColon(cfg.Metrics.Port)
			log.Info("metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	restServer := rest.NewServer(eng, reporter, db, log)
	httpSrv := &http.Server{
		Addr:    withColon(cfg.Server.HTTPPort),
		Handler: restServer.Handler(),
	}
	go func() {
		log.Info("http server listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	grpcAddr := withColon(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal("failed to listen for grpc", zap.Error(err))
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(rpc.UnaryLoggingInterceptor(log)),
		grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPCWorkerPoolSize)),
	)
	rpcHandler := rpc.NewHandler(eng, reporter, log)
	rpc.RegisterInventoryServer(grpcServer, rpcHandler)
	reflection.Register(grpcServer)

	go func() {
		log.Info("grpc server listening", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("grpc server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	log.Info("server stopped")
}

func withColon(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
