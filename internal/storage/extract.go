package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

// maxExtractedText bounds the text kept for search.
const maxExtractedText = 64 << 10

// ExtractText pulls plain text out of a resume for search indexing.
func ExtractText(r io.Reader, contentType string) (string, error) {
	var text string
	switch ct := NormalizeContentType(contentType); ct {
	case "text/plain":
		b, err := io.ReadAll(io.LimitReader(r, maxExtractedText))
		if err != nil {
			return "", fmt.Errorf("read text resume: %w", err)
		}
		text = string(bytes.ToValidUTF8(b, nil))
	default:
		res, err := docconv.Convert(r, ct, false)
		if err != nil {
			return "", fmt.Errorf("convert %s resume: %w", ct, err)
		}
		text = res.Body
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxExtractedText {
		text = strings.ToValidUTF8(text[:maxExtractedText], "")
	}
	return text, nil
}
