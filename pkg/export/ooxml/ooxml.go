// Package ooxml writes minimal WordprocessingML (.docx) and PresentationML
// (.pptx) packages. Only the parts the report formatters need are emitted:
// headings, paragraphs, tables, inline PNG images and simple slides.
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// EMU is the OOXML drawing unit. 914400 EMU per inch.
const (
	EMUPerInch = 914400
	EMUPerCM   = 360000
)

// Inches converts inches to EMU.
func Inches(in float64) int64 {
	return int64(in * EMUPerInch)
}

type part struct {
	name string
	data []byte
}

// writePackage zips the parts into an OPC package. Part names must not
// start with a slash.
func writePackage(parts []part) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string {
	return xmlEscaper.Replace(s)
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func relationships(rels []relationship) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.relType, r.target)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

type relationship struct {
	id      string
	relType string
	target  string
}

const (
	relTypeDocument   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeImage      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeSlide      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMstr  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLay   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	contentTypesPart  = "[Content_Types].xml"
	defaultExtensions = `<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>`
)
