package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bayoubeans/coffee-orders/internal/audit"
	"github.com/bayoubeans/coffee-orders/internal/auth"
	"github.com/bayoubeans/coffee-orders/internal/cli"
	"github.com/bayoubeans/coffee-orders/internal/config"
	"github.com/bayoubeans/coffee-orders/internal/idgen"
	"github.com/bayoubeans/coffee-orders/internal/kafka"
	"github.com/bayoubeans/coffee-orders/internal/logger"
	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	"github.com/bayoubeans/coffee-orders/internal/repository/records"
	"github.com/bayoubeans/coffee-orders/internal/server"
	"github.com/bayoubeans/coffee-orders/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)
	defer func() { _ = lg.Sync() }()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARNING: record store at %s not reachable yet: %v", cfg.RedisAddr, err)
	}
	pingCancel()

	store := recordstore.NewRedisStore(client)
	orderRepo := records.NewOrderRepo(store)
	userRepo := records.NewUserRepo(store)

	var verifier auth.CredentialVerifier = auth.PlaintextVerifier{}
	if cfg.CredentialMode == "bcrypt" {
		verifier = auth.BcryptVerifier{}
	}
	authn := auth.NewAuthenticator(userRepo, verifier)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewKafkaProducer(cfg.KafkaBrokers)
	} else {
		producer = kafka.NewConsoleProducer()
	}

	auditMgr := audit.NewManager(producer, cfg.AuditTopic, cfg.AuditWorkers, cfg.AuditBatch, cfg.AuditFlush)
	auditMgr.Start(ctx)

	svc := service.New(orderRepo, authn, idgen.UUIDGenerator{}, auditMgr, lg)

	if err := seedAdmin(ctx, cfg, userRepo); err != nil {
		log.Printf("WARNING: admin seed failed: %v", err)
	}

	srv := server.New(svc, auditMgr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(cfg.HTTPPort)
	})

	// The prompt loop blocks on stdin reads that cannot be interrupted, so it
	// runs outside the group: on a signal the process exits without waiting
	// for the operator to press Enter.
	go func() {
		handler := cli.New(svc, os.Stdin, os.Stdout)
		if err := handler.Run(gctx); err != nil && err != context.Canceled {
			log.Printf("Prompt loop exited with error: %v", err)
		}
		cancel()
	}()

	<-gctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	auditMgr.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("Exited with error: %v", err)
	}
	log.Println("Gracefully stopped")
}

func seedAdmin(ctx context.Context, cfg *config.Config, users *records.UserRepo) error {
	stored := cfg.AdminPassword
	if cfg.CredentialMode == "bcrypt" && stored != "" {
		hashed, err := auth.HashSecret(stored)
		if err != nil {
			return err
		}
		stored = hashed
	}
	return records.SeedAdmin(ctx, users, cfg.AdminUsername, stored)
}
