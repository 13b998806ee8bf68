package skills

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// AllowedExtensions are the CV file types accepted for upload
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

var ErrUnsupportedDocument = errors.New("unsupported document type")

// maxOOXMLBytes caps the decompressed size of word/document.xml
var maxOOXMLBytes int64 = 80 << 20

// AllowedFile reports whether the file name has one of the allowed extensions (case-insensitive)
func AllowedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DocumentText returns the plain text of an uploaded CV.
// .txt is read as is, .pdf through the PDF text layer and .docx/.doc from the OOXML body.
// Legacy binary .doc files are not readable and return an error.
func DocumentText(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		if !utf8.Valid(data) {
			return strings.ToValidUTF8(string(data), " "), nil
		}
		return string(data), nil
	case ".pdf":
		return pdfText(data)
	case ".docx", ".doc":
		return docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, name)
	}
}

// pdfText reads the text layer. The pdf package panics on some malformed files, so panics are returned as errors.
func pdfText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("copying pdf text: %w", err)
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("word/document.xml not found")
	}

	if body.UncompressedSize64 > uint64(maxOOXMLBytes) {
		return "", fmt.Errorf("docx body is too large: %d bytes", body.UncompressedSize64)
	}

	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	// the header size can be forged
	return ooxmlText(io.LimitReader(rc, maxOOXMLBytes))
}

// ooxmlText keeps the character data of the document, one line per paragraph
func ooxmlText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing docx body: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
