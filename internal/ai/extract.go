package ai

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
)

// ExtractText returns the plain text of an uploaded CV. Office and PDF
// formats go through docconv; when that fails or yields nothing, bytes that
// are valid UTF-8 are used as-is.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", "":
		if utf8.Valid(data) {
			return string(data), nil
		}
		return "", fmt.Errorf("file %s is not valid UTF-8 text", filename)
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		var extractErr error
		res, err := docconv.Convert(bytes.NewReader(data), docconv.MimeTypeByExtension(filename), false)
		switch {
		case err != nil:
			extractErr = err
		case strings.TrimSpace(res.Body) != "":
			return res.Body, nil
		}
		if len(data) > 0 && utf8.Valid(data) {
			return string(data), nil
		}
		if extractErr != nil {
			return "", fmt.Errorf("failed to parse document: %w", extractErr)
		}
		return "", fmt.Errorf("no text found in %s", filename)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}
