// Package doctext turns resume attachments (PDF, DOCX, plain text) into
// text for the extraction pipeline.
package doctext

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const maxAttachmentBytes = 10 << 20

// FromBytes extracts text from an in-memory attachment, choosing the
// decoder from the file extension.
func FromBytes(data []byte, fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return fromPDF(data)
	case ".docx":
		return fromDOCX(data)
	case ".txt", ".md", "":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported attachment type: %s", filepath.Ext(fileName))
	}
}

// Loader fetches attachment text from a local path or an http(s) URL.
type Loader struct {
	HTTPClient *http.Client
}

// NewLoader constructs a Loader with a bounded HTTP timeout.
func NewLoader() *Loader {
	return &Loader{HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

// Load reads the attachment and extracts its text.
func (l *Loader) Load(ctx context.Context, url string) (string, error) {
	data, err := l.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return FromBytes(data, strings.SplitN(url, "?", 2)[0])
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("attachment fetch: status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
	}

	info, err := os.Stat(url)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxAttachmentBytes {
		return nil, errors.New("attachment too large")
	}
	return os.ReadFile(url)
}

func fromPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
