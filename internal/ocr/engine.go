package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages string // combined tesseract hint, e.g. "eng+spa"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Result is the raw engine output. Confidence is the engine's own mean word
// recognition confidence scaled to 0..1, zero when TSV mode is disabled.
type Result struct {
	Text       string
	Pages      int
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// ProgressFunc is invoked after each recognized page.
type ProgressFunc func(page, total int)

// Engine rasterizes PDF pages and recognizes text with tesseract.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// RecognizePDF rasterizes every page and OCRs each one. Failed pages are
// reported as warnings, not errors; the call fails only when no page yields
// any text.
func (e *Engine) RecognizePDF(ctx context.Context, path string, progress ProgressFunc) (Result, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "si-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	var confSum float64
	var confN int
	for i, img := range matches {
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)

		if e.cfg.EnableTSVConfidence {
			if c, err2 := e.tesseractTSVConfidence(ctx, img); err2 == nil && c > 0 {
				confSum += float64(c)
				confN++
			} else if err2 != nil {
				warns = append(warns, err2.Error())
			}
		}
		if progress != nil {
			progress(i+1, len(matches))
		}
	}
	if b.Len() == 0 {
		return Result{Pages: len(matches), Warnings: warns}, fmt.Errorf("ocr produced no text")
	}

	var conf float32
	if confN > 0 {
		conf = float32(confSum / float64(confN))
	}

	return Result{
		Text:       b.String(),
		Pages:      len(matches),
		Language:   e.cfg.Languages,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: conf,
	}, nil
}

func (e *Engine) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
