// Package formdata parses multipart/form-data bodies leniently: malformed
// parts are dropped instead of failing the whole body.
package formdata

import (
	"bytes"
	"regexp"
	"unicode/utf8"
)

// Part is one named field or file of a form body. Data aliases the parsed body.
type Part struct {
	Name        string
	Filename    string
	HasFilename bool
	Data        []byte
}

var (
	namePattern     = regexp.MustCompile(`\bname="([^"]*)"`)
	filenamePattern = regexp.MustCompile(`\bfilename="([^"]*)"`)

	crlfcrlf = []byte("\r\n\r\n")
	lflf     = []byte("\n\n")
	crlf     = []byte("\r\n")
	lf       = []byte("\n")
	dashes   = []byte("--")
)

// Parse splits body on the boundary and returns parts keyed by field name.
// A repeated name keeps the last occurrence.
func Parse(body []byte, boundary string) map[string]Part {
	parts := make(map[string]Part)
	if boundary == "" || len(body) == 0 {
		return parts
	}

	delimiter := append([]byte("--"), boundary...)
	for _, segment := range bytes.Split(body, delimiter) {
		if len(segment) == 0 || bytes.HasPrefix(segment, dashes) {
			continue
		}
		part, ok := parsePart(segment)
		if !ok {
			continue
		}
		parts[part.Name] = part
	}
	return parts
}

func parsePart(segment []byte) (Part, bool) {
	header, data, ok := splitHeader(segment)
	if !ok || !utf8.Valid(header) {
		return Part{}, false
	}

	name := namePattern.FindSubmatch(header)
	if name == nil {
		return Part{}, false
	}
	part := Part{Name: string(name[1])}
	if filename := filenamePattern.FindSubmatch(header); filename != nil {
		part.Filename = string(filename[1])
		part.HasFilename = true
	}

	switch {
	case bytes.HasSuffix(data, crlf):
		data = data[:len(data)-len(crlf)]
	case bytes.HasSuffix(data, lf):
		data = data[:len(data)-len(lf)]
	}
	part.Data = data
	return part, true
}

func splitHeader(segment []byte) (header, data []byte, ok bool) {
	if idx := bytes.Index(segment, crlfcrlf); idx >= 0 {
		return segment[:idx], segment[idx+len(crlfcrlf):], true
	}
	if idx := bytes.Index(segment, lflf); idx >= 0 {
		return segment[:idx], segment[idx+len(lflf):], true
	}
	return nil, nil, false
}
