// Command deliverkitd serves the email deliverability API over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/deliverkit"
	"github.com/optimode/deliverkit/internal/config"
	"github.com/optimode/deliverkit/internal/server"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	vcfg := deliverkit.DefaultConfig()
	vcfg.DNS.LookupTimeout = cfg.DNSTimeout
	vcfg.DNS.CacheTTL = cfg.DNSCacheTTL
	vcfg.DNS.Nameservers = cfg.Nameservers
	vcfg.Domain.SourceURL = cfg.DisposableSourceURL
	vcfg.SMTP.Enabled = cfg.SMTPEnabled
	vcfg.SMTP.HeloDomain = cfg.SMTPHeloDomain
	vcfg.SMTP.MailFrom = cfg.SMTPMailFrom
	vcfg.SMTP.ConnectTimeout = cfg.SMTPConnectTimeout
	vcfg.SMTP.CommandTimeout = cfg.SMTPCommandTimeout
	vcfg.SMTP.Port = cfg.SMTPPort
	vcfg.SMTP.MaxMXHosts = cfg.SMTPMaxMXHosts
	vcfg.SMTP.DetectCatchAll = cfg.SMTPDetectCatchAll
	vcfg.Batch.MaxSize = cfg.BatchMaxSize
	vcfg.Batch.Workers = cfg.BatchWorkers

	v, err := deliverkit.New(vcfg)
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DisposableRefreshEnabled {
		go refreshDisposables(ctx, v, logger, cfg.DisposableRefreshEvery)
	}

	app := server.New(v, logger, server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.WithFields(logrus.Fields{
		"port":        cfg.ServerPort,
		"environment": cfg.Environment,
		"smtp_probe":  cfg.SMTPEnabled,
	}).Info("server starting")
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// refreshDisposables keeps the disposable-domain snapshot current. The
// embedded seed list stays in effect until the first successful fetch,
// and a failed fetch never clears a working snapshot.
func refreshDisposables(ctx context.Context, v *deliverkit.Validator, logger *logrus.Logger, every time.Duration) {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := v.Disposables().Refresh(rctx); err != nil {
			logger.WithError(err).Warn("disposable list refresh failed")
			return
		}
		logger.WithField("domains", v.Disposables().Len()).Info("disposable list refreshed")
	}

	refresh()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
