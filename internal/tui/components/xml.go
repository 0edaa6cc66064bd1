package components

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// FormatXML re-indents an XML document for display. Input that does not
// parse is returned unchanged.
func FormatXML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.Strict = false

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return raw
		}
		if cd, ok := tok.(xml.CharData); ok {
			trimmed := bytes.TrimSpace(cd)
			if len(trimmed) == 0 {
				continue
			}
			tok = xml.CharData(trimmed)
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return raw
		}
	}
	if err := enc.Flush(); err != nil {
		return raw
	}
	return buf.String()
}
