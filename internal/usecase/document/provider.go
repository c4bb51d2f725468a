package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
)

// Extraction method labels reported alongside the text. Callers treat them
// as informational only.
const (
	MethodPDF       = "pdfcpu"
	MethodPlainText = "plaintext"
	MethodNone      = "none"
)

// MaxDocumentSize caps uploads at 50MB.
const MaxDocumentSize = 50 << 20

var pdfMagic = []byte("%PDF")

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
	spaceRuns     = regexp.MustCompile(`[ \t]{2,}`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// Provider turns raw uploaded bytes into best-effort plain text using an
// ordered cascade of strategies.
type Provider struct {
	logger  *zap.Logger
	tempDir string
}

func NewProvider(logger *zap.Logger) *Provider {
	tempDir := filepath.Join(os.TempDir(), "taskbridge-docs")
	os.MkdirAll(tempDir, 0o755)

	return &Provider{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Validate rejects uploads the cascade can never handle: wrong extension,
// oversized files, and files whose header does not match the extension.
func (p *Provider) Validate(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".txt":
	default:
		return apperrors.ErrDocumentInvalid(fmt.Sprintf("unsupported file type %q, expected .pdf or .txt", ext))
	}
	if len(data) == 0 {
		return apperrors.ErrDocumentInvalid("file is empty")
	}
	if len(data) > MaxDocumentSize {
		return apperrors.ErrDocumentInvalid("file exceeds the 50MB limit")
	}
	if ext == ".pdf" && !bytes.HasPrefix(data, pdfMagic) {
		return apperrors.ErrDocumentInvalid("file does not look like a PDF")
	}
	return nil
}

// Extract runs the cascade and returns the first non-empty result plus the
// strategy that produced it. It returns ("", "none") when every strategy
// fails, never an error.
func (p *Provider) Extract(data []byte) (string, string) {
	if bytes.HasPrefix(data, pdfMagic) {
		text, err := p.extractPDF(data)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("⚠️ PDF extraction failed, trying plain text", zap.Error(err))
			}
		} else if strings.TrimSpace(text) != "" {
			return CleanText(text), MethodPDF
		}
	}

	if utf8.Valid(data) {
		text := CleanText(string(data))
		if strings.TrimSpace(text) != "" {
			return text, MethodPlainText
		}
	}

	return "", MethodNone
}

// extractPDF extracts page content via pdfcpu, which works on files rather
// than readers, so the bytes take a round trip through the temp dir. Temp
// paths are unique per call so concurrent uploads never share files.
func (p *Provider) extractPDF(data []byte) (string, error) {
	tempFile, err := os.CreateTemp(p.tempDir, "upload_*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp pdf: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("close temp pdf: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(tempPath)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	outDir, err := os.MkdirTemp(p.tempDir, "pages_")
	if err != nil {
		return "", fmt.Errorf("create pages dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(tempPath, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("extract pdf content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		if text, ok := pageTexts[pageNum]; ok {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}

// CleanText normalizes line endings, strips control characters, and
// collapses whitespace runs so the transcript prompts stay compact.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlChars.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
