package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Aashish23092/tax-slip-engine/client"
	"github.com/Aashish23092/tax-slip-engine/config"
	"github.com/Aashish23092/tax-slip-engine/handler"
	"github.com/Aashish23092/tax-slip-engine/logger"
	"github.com/Aashish23092/tax-slip-engine/repository"
	"github.com/Aashish23092/tax-slip-engine/service"
	"github.com/Aashish23092/tax-slip-engine/taxrules"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	if err := logger.Init(cfg.LogLevel); err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules, err := taxrules.Default()
	if err != nil {
		logger.Fatal("failed to load tax rules", zap.Error(err))
	}
	if cfg.Tax.RulesDir != "" {
		if err := rules.LoadDir(cfg.Tax.RulesDir); err != nil {
			log.Fatal("failed to load tax rules directory", zap.String("dir", cfg.Tax.RulesDir), zap.Error(err))
		}
	}
	log.Info("tax rules loaded", zap.Ints("years", rules.Years()))

	// OCR engines, tried in order
	var recognizers []service.ImageRecognizer
	paddleClient := client.NewPaddleClient(cfg.OCR.RemoteURL, cfg.OCR.Timeout, log)
	if paddleClient.Enabled() {
		recognizers = append(recognizers, paddleClient)
	}
	tesseractClient := client.NewTesseractClient(cfg.OCR.TesseractDataPath, cfg.OCR.Languages, log)
	recognizers = append(recognizers, tesseractClient)
	log.Info("OCR engines configured", zap.Int("engines", len(recognizers)), zap.Stringer("tesseract", tesseractClient))

	acquirer := service.NewTextAcquirer(
		service.NewPDFProcessor(),
		service.NewBarcodeReader(),
		cfg.OCR.Timeout,
		cfg.Extract.MaxFileSize,
		log,
		recognizers...,
	)
	extractionService := service.NewExtractionService(acquirer, log,
		service.WithWorkers(cfg.Extract.Workers),
		service.WithFileTimeout(cfg.OCR.Timeout),
	)
	taxService := service.NewTaxService(rules, log,
		service.WithSplitCombinedWithholding(cfg.Tax.SplitCombinedWithholding),
	)

	store, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	handler.RegisterRoutes(router,
		handler.NewDocumentHandler(extractionService, store, cfg.Extract.MaxFileSize, log),
		handler.NewReturnHandler(taxService, store, log),
		handler.NewRulesHandler(rules, log),
		handler.RateLimit(rate.NewLimiter(rate.Limit(cfg.Extract.UploadRate), cfg.Extract.UploadBurst), log),
	)

	logger.Debug("routes registered", zap.Int("routes", len(router.Routes())))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("starting tax slip engine", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repository.DocumentStore, func(), error) {
	if cfg.Driver == "" || cfg.Driver == "memory" {
		log.Info("using in-memory document store")
		return repository.NewMemoryStore(), func() {}, nil
	}
	store, err := repository.OpenSQL(ctx, cfg.Driver, cfg.DSN, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close document store", zap.Error(err))
		}
	}, nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
