package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// NoFAQs is used in the prompt when no FAQ entries are loaded.
const NoFAQs = "No FAQs available."

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type file struct {
	FAQs []FAQ `json:"faqs"`
}

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("faq file not found")

// Load reads a {"faqs": [{"question", "answer"}]} document.
func Load(path string) ([]FAQ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode faq file: %w", err)
	}
	return f.FAQs, nil
}

// Format renders entries as "Q: ...\nA: ..." blocks joined by newlines.
func Format(faqs []FAQ) string {
	if len(faqs) == 0 {
		return NoFAQs
	}
	parts := make([]string, 0, len(faqs))
	for _, f := range faqs {
		parts = append(parts, "Q: "+f.Question+"\nA: "+f.Answer)
	}
	return strings.Join(parts, "\n")
}
