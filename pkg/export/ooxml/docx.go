package ooxml

import (
	"fmt"
	"strings"
)

// DocWriter builds a .docx document block by block.
type DocWriter struct {
	body   strings.Builder
	images []docImage
}

type docImage struct {
	relID string
	name  string
	data  []byte
}

func NewDocWriter() *DocWriter {
	return &DocWriter{}
}

// Heading writes a bold paragraph sized by level (1 largest, 3 smallest).
func (d *DocWriter) Heading(text string, level int) {
	size := 32
	switch level {
	case 2:
		size = 26
	case 3:
		size = 22
	}
	fmt.Fprintf(&d.body,
		`<w:p><w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>`+
			`<w:r><w:rPr><w:b/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`+
			`<w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		size, size, esc(text))
}

// Paragraph writes a plain text paragraph.
func (d *DocWriter) Paragraph(text string) {
	fmt.Fprintf(&d.body,
		`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, esc(text))
}

// ItalicParagraph writes an italic paragraph, used for inline error notes.
func (d *DocWriter) ItalicParagraph(text string) {
	fmt.Fprintf(&d.body,
		`<w:p><w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, esc(text))
}

// Bullet writes an indented bullet line. A literal bullet glyph avoids
// carrying a numbering part for a single list style.
func (d *DocWriter) Bullet(text string) {
	fmt.Fprintf(&d.body,
		`<w:p><w:pPr><w:ind w:left="360"/></w:pPr>`+
			`<w:r><w:t xml:space="preserve">%s %s</w:t></w:r></w:p>`,
		"•", esc(text))
}

// PageBreak starts a new page.
func (d *DocWriter) PageBreak() {
	d.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

// Table writes a bordered table with a bold header row.
func (d *DocWriter) Table(headers []string, rows [][]string) {
	d.body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:left w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:bottom w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:right w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:insideH w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:insideV w:val="single" w:sz="4" w:color="999999"/>` +
		`</w:tblBorders></w:tblPr>`)

	d.body.WriteString(`<w:tr>`)
	for _, h := range headers {
		fmt.Fprintf(&d.body,
			`<w:tc><w:tcPr><w:shd w:val="clear" w:fill="D9E2F3"/></w:tcPr>`+
				`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`,
			esc(h))
	}
	d.body.WriteString(`</w:tr>`)

	for _, row := range rows {
		d.body.WriteString(`<w:tr>`)
		for _, cell := range row {
			fmt.Fprintf(&d.body,
				`<w:tc><w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`, esc(cell))
		}
		d.body.WriteString(`</w:tr>`)
	}
	d.body.WriteString(`</w:tbl><w:p/>`)
}

// Image embeds a PNG inline at the given size.
func (d *DocWriter) Image(png []byte, widthEMU, heightEMU int64) {
	n := len(d.images) + 1
	relID := fmt.Sprintf("rIdImg%d", n)
	d.images = append(d.images, docImage{
		relID: relID,
		name:  fmt.Sprintf("image%d.png", n),
		data:  png,
	})
	fmt.Fprintf(&d.body,
		`<w:p><w:r><w:drawing>`+
			`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:docPr id="%d" name="Chart %d"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="chart%d.png"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		widthEMU, heightEMU, n, n, n, n, relID, widthEMU, heightEMU)
}

// Bytes assembles the document into a .docx package.
func (d *DocWriter) Bytes() ([]byte, error) {
	var types strings.Builder
	types.WriteString(xmlHeader)
	types.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	types.WriteString(defaultExtensions)
	types.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	types.WriteString(`</Types>`)

	docRels := []relationship{}
	for _, img := range d.images {
		docRels = append(docRels, relationship{
			id: img.relID, relType: relTypeImage, target: "media/" + img.name,
		})
	}

	var doc strings.Builder
	doc.WriteString(xmlHeader)
	doc.WriteString(`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`)
	doc.WriteString(`<w:body>`)
	doc.WriteString(d.body.String())
	doc.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134"/></w:sectPr>`)
	doc.WriteString(`</w:body></w:document>`)

	parts := []part{
		{name: contentTypesPart, data: []byte(types.String())},
		{name: "_rels/.rels", data: relationships([]relationship{
			{id: "rId1", relType: relTypeDocument, target: "word/document.xml"},
		})},
		{name: "word/document.xml", data: []byte(doc.String())},
		{name: "word/_rels/document.xml.rels", data: relationships(docRels)},
	}
	for _, img := range d.images {
		parts = append(parts, part{name: "word/media/" + img.name, data: img.data})
	}
	return writePackage(parts)
}
