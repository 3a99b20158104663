package diagramlink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
)

// MaxFileBytes is the largest diagram file accepted for upload.
const MaxFileBytes = 10 << 20

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = fmt.Errorf("file exceeds %d MiB", MaxFileBytes>>20)
	ErrNotDataURL   = errors.New("not a base64 data url")
)

type FilePayload struct {
	FileName string
	FileType string
	FileSize int64
	DataURL  string
	Source   domain.DiagramSource
}

// EncodeFile packages raw file bytes as a base64 data URL. When mimeType is
// empty it is derived from the extension, then from the content.
func EncodeFile(name, mimeType string, data []byte) (FilePayload, error) {
	if len(data) == 0 {
		return FilePayload{}, ErrEmptyFile
	}
	if len(data) > MaxFileBytes {
		return FilePayload{}, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(name))
	if mimeType == "" {
		mimeType = extensionTypes[ext]
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return FilePayload{
		FileName: filepath.Base(name),
		FileType: mimeType,
		FileSize: int64(len(data)),
		DataURL:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Source:   SourceForFile(name, mimeType),
	}, nil
}

// DecodeDataURL reverses EncodeFile and returns the MIME type and bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return mimeType, data, nil
}

var extensionTypes = map[string]string{
	".drawio": "application/vnd.jgraph.mxfile",
	".vsdx":   "application/vnd.ms-visio.drawing",
	".vsd":    "application/vnd.visio",
	".mmd":    "text/vnd.mermaid",
	".svg":    "image/svg+xml",
	".pdf":    "application/pdf",
}

// SourceForFile guesses the diagram source from a file name and MIME type.
func SourceForFile(name, mimeType string) domain.DiagramSource {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".drawio", ".xml":
		return domain.SourceDrawio
	case ".vsdx", ".vsd":
		return domain.SourceVisio
	case ".pdf":
		return domain.SourcePDF
	case ".mmd", ".mermaid":
		return domain.SourceMermaid
	}
	if mimeType == "application/pdf" {
		return domain.SourcePDF
	}
	return domain.SourceImage
}
