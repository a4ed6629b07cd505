package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// loadProgram reads a program file. Files that are entirely printable text
// are parsed as byte lists, anything else is taken as a raw binary image.
func loadProgram(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isText(data) {
		return data, nil
	}
	prog, err := parseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func isText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, b := range data {
		if b >= 0x80 || (b < 0x20 && b != '\n' && b != '\r' && b != '\t') {
			return false
		}
	}
	return true
}

// parseProgram converts text like "06 05 ; LD B,5" into bytes. Values are
// separated by whitespace or commas; ';' starts a comment. Bare values
// without a prefix or suffix are read as hex, the way dumps are written.
func parseProgram(text string) ([]byte, error) {
	var out []byte
	for n, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return unicode.IsSpace(r) || r == ','
		})
		for _, f := range fields {
			v, err := parseImmediate(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q: %w", n+1, f, err)
			}
			if v < 0 || v > 0xFF {
				return nil, fmt.Errorf("line %d: %q does not fit in a byte", n+1, f)
			}
			out = append(out, uint8(v))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no bytes in program")
	}
	return out, nil
}

// parseImmediate reads 0x1F, 1Fh, %00011111 (binary), #31 (decimal) or bare
// hex. A trailing B is a hex digit, never a binary suffix.
func parseImmediate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}

	base := 16
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "0X"):
		s = s[2:]
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 10
	case strings.HasSuffix(upper, "H"):
		s = s[:len(s)-1]
	case strings.HasPrefix(s, "%"):
		s, base = s[1:], 2
	}
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number")
	}
	return int(v), nil
}
