package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TesseractExtractor shells out to the tesseract binary. The languages
// default to Vietnamese + English, matching the bank transfer screenshots
// this system receives.
type TesseractExtractor struct {
	Binary    string
	Languages string
}

func NewTesseractExtractor(binary, languages string) *TesseractExtractor {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = "vie+eng"
	}
	return &TesseractExtractor{Binary: binary, Languages: languages}
}

func (t *TesseractExtractor) Extract(ctx context.Context, absoluteImagePath string) (Result, error) {
	// "stdout" makes tesseract print the recognized text instead of
	// writing an output file.
	cmd := exec.CommandContext(ctx, t.Binary, absoluteImagePath, "stdout", "-l", t.Languages)
	out, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w", err)
	}

	raw := strings.TrimSpace(string(out))
	return ParseRawText(raw), nil
}
