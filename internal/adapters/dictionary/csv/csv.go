// Package csv reads and writes user dictionaries for the local backend.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"yagt/internal/domain"
)

// Parse reads a header row followed by entries. A "source" (or "text")
// column and a "translation" (or "target") column are required; a
// "lang" column overrides defaultLang per row.
func Parse(data []byte, defaultLang string) ([]*domain.DictionaryEntry, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.Comma = sniffComma(data)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	srcIdx := column(idx, "source", "text", "original")
	if srcIdx == -1 {
		return nil, errors.New("csv missing source column (source/text/original)")
	}
	dstIdx := column(idx, "translation", "target", "translated")
	if dstIdx == -1 {
		return nil, errors.New("csv missing translation column (translation/target/translated)")
	}
	langIdx := column(idx, "lang", "tgt_lang", "language")

	var out []*domain.DictionaryEntry
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		src, dst := field(rec, srcIdx), field(rec, dstIdx)
		if src == "" || dst == "" {
			continue
		}
		lang := defaultLang
		if l := field(rec, langIdx); l != "" {
			lang = l
		}
		if lang == "" {
			return nil, fmt.Errorf("line %d: no target language", line)
		}
		out = append(out, &domain.DictionaryEntry{SourceText: src, TgtLang: lang, Translation: dst})
	}
	return out, nil
}

// Export writes entries with a header row. sep is comma, semicolon or tab.
func Export(w io.Writer, entries []*domain.DictionaryEntry, sep string) error {
	cw := csv.NewWriter(w)
	switch strings.ToLower(strings.TrimSpace(sep)) {
	case "semicolon":
		cw.Comma = ';'
	case "tab":
		cw.Comma = '\t'
	}
	if err := cw.Write([]string{"source", "lang", "translation"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.SourceText, e.TgtLang, e.Translation}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func column(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// sniffComma picks the delimiter from the header line.
func sniffComma(data []byte) rune {
	head, _, _ := bytes.Cut(data, []byte("\n"))
	switch {
	case bytes.Count(head, []byte("\t")) > bytes.Count(head, []byte(",")):
		return '\t'
	case bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")):
		return ';'
	}
	return ','
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
