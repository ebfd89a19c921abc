package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"intake/model"
)

type inputSource struct {
	clipboard bool
	stdin     io.Reader
}

// read loads content from the clipboard, stdin ("-" or no argument) or a
// file path. Files are returned as model.File so their MIME type travels
// with them.
func (s inputSource) read(args []string) (any, model.DataKind, error) {
	switch {
	case s.clipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, "", fmt.Errorf("clipboard is empty")
		}
		return text, model.DetectKind(text), nil

	case len(args) == 0 || args[0] == "-":
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return nil, "", fmt.Errorf("no input provided")
		}
		return text, model.DetectKind(text), nil

	default:
		f, err := model.LoadFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return f, model.KindFromMIME(f.MIME), nil
	}
}

func fileText(content any) (string, bool) {
	f, ok := content.(model.File)
	if !ok {
		return "", false
	}
	return string(f.Data), true
}
