package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/finwise-app/statement-ingest/internal/classify"
	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/document"
	"github.com/finwise-app/statement-ingest/internal/extract"
	"github.com/finwise-app/statement-ingest/internal/llm"
	"github.com/finwise-app/statement-ingest/internal/llm/openai"
	"github.com/finwise-app/statement-ingest/internal/ocr"
	"github.com/finwise-app/statement-ingest/internal/pipeline"
	"github.com/finwise-app/statement-ingest/internal/store"
	"github.com/finwise-app/statement-ingest/internal/txn"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "statement-ingest <statement-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}
	doc := document.NewSourceDocument(data, filepath.Base(path), "")

	orch := buildOrchestrator(cfg, logger)

	ctx := context.Background()
	res := orch.Process(ctx, doc, pipeline.Options{
		Progress: func(stage string, percent int) {
			logger.Info("progress", "stage", stage, "percent", percent)
		},
	})

	for _, w := range res.Warnings {
		logger.Warn("pipeline warning", "warning", w)
	}
	for _, e := range res.Errors {
		logger.Error("pipeline error", "error", e)
	}
	if !res.Success {
		os.Exit(1)
	}

	st, err := store.Open(ctx, cfg.Store.DSN, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	inserted, err := st.SaveTransactions(ctx, doc.Filename, res.Transactions)
	if err != nil {
		logger.Error("save transactions", "error", err)
		os.Exit(1)
	}

	logger.Info("ingest OK",
		"transactions", len(res.Transactions),
		"inserted", inserted,
		"method", res.Metadata.Method,
		"bank", res.Metadata.BankDetected,
		"language", res.Metadata.Language,
		"confidence", res.Metadata.Confidence,
		"elapsed_ms", res.Metadata.ProcessingTimeMs,
	)
}

func buildOrchestrator(cfg *common.Config, logger *slog.Logger) *pipeline.Orchestrator {
	runner := ocr.ExecRunner{}

	var client llm.CompletionClient
	if cfg.LLM.Enabled {
		client = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}

	native := extract.NewNativeStrategy(cfg.OCR.Pdftotext, runner, logger)
	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		Languages:           cfg.OCR.Languages,
		DPI:                 cfg.OCR.DPI,
		MaxPages:            cfg.OCR.MaxPages,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
	}, runner, logger)
	ocrStrategy := extract.NewOCRStrategy(engine, logger)
	hybrid := extract.NewHybridStrategy(native, ocrStrategy, logger)

	chain := extract.NewChain(
		[]extract.Strategy{native, ocrStrategy, hybrid},
		cfg.Pipeline.MinTextLength,
		cfg.Pipeline.StageTimeout,
		logger,
	)

	var ai *txn.AIExtractor
	if client != nil {
		ai = txn.NewAIExtractor(client, logger)
	}

	return pipeline.NewOrchestrator(
		cfg.Pipeline,
		document.NewValidator(cfg.Pipeline.MaxFileSize, logger),
		chain,
		classify.NewClassifier(client, logger),
		ai,
		txn.NewPatternExtractor(0, logger),
		txn.NewValidator(cfg.Pipeline.MinConfidence, logger),
		logger,
	)
}
