package rewrite

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SplitLines splits file content into lines. A leading BOM and trailing
// carriage returns are dropped, and a final empty element is appended when
// the content does not end with a newline, so JoinLines always produces a
// newline-terminated file.
func SplitLines(content []byte) []string {
	content = bytes.TrimPrefix(content, utf8BOM)
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return lines
}

// JoinLines is the inverse of SplitLines for canonical content.
func JoinLines(lines []string) []byte {
	return LineFormat{}.Encode(lines)
}

// LineFormat is the byte-level encoding SplitLines strips from a file.
type LineFormat struct {
	BOM  bool
	CRLF bool
}

// DetectFormat reports whether content starts with a BOM and whether its
// first line ends with "\r\n".
func DetectFormat(content []byte) LineFormat {
	f := LineFormat{BOM: bytes.HasPrefix(content, utf8BOM)}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		f.CRLF = true
	}
	return f
}

// Encode joins lines with the format's line ending, prefixing the BOM when
// the format has one.
func (f LineFormat) Encode(lines []string) []byte {
	sep := "\n"
	if f.CRLF {
		sep = "\r\n"
	}
	var buf bytes.Buffer
	if f.BOM {
		buf.Write(utf8BOM)
	}
	buf.WriteString(strings.Join(lines, sep))
	return buf.Bytes()
}
