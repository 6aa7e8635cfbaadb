package ooxml

import (
	"fmt"
	"strings"
)

// Slide geometry for a 16:9 deck, in EMU.
const (
	SlideWidth  = 12192000
	SlideHeight = 6858000
)

// Presentation builds a .pptx deck slide by slide.
type Presentation struct {
	slides []*Slide
	images []slideImage
}

// Slide is one slide under construction. Shapes are positioned in EMU.
type Slide struct {
	pres   *Presentation
	shapes strings.Builder
	relIDs []string
	nextID int
}

type slideImage struct {
	name string
	data []byte
}

func NewPresentation() *Presentation {
	return &Presentation{}
}

func (p *Presentation) AddSlide() *Slide {
	s := &Slide{pres: p, nextID: 2}
	p.slides = append(p.slides, s)
	return s
}

func (s *Slide) shapeID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Title places a large bold text box across the top of the slide.
func (s *Slide) Title(text string) {
	s.textBox(text, Inches(0.5), Inches(0.4), SlideWidth-Inches(1.0), Inches(1.0), 3600, true, false)
}

// Subtitle places a medium text box under the title position.
func (s *Slide) Subtitle(text string) {
	s.textBox(text, Inches(0.5), Inches(1.5), SlideWidth-Inches(1.0), Inches(0.8), 2000, false, false)
}

// Text places a body text box at the given position.
func (s *Slide) Text(text string, x, y, cx, cy int64) {
	s.textBox(text, x, y, cx, cy, 1600, false, false)
}

// Bullets places a text box with one bullet paragraph per line.
func (s *Slide) Bullets(lines []string, x, y, cx, cy int64) {
	id := s.shapeID()
	fmt.Fprintf(&s.shapes,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Content %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square"/>`,
		id, id, x, y, cx, cy)
	for _, line := range lines {
		fmt.Fprintf(&s.shapes,
			`<a:p><a:pPr indent="-228600" marL="228600"><a:buChar char="%s"/></a:pPr>`+
				`<a:r><a:rPr lang="en-US" sz="1600" dirty="0"/><a:t>%s</a:t></a:r></a:p>`,
			"•", esc(line))
	}
	s.shapes.WriteString(`</p:txBody></p:sp>`)
}

func (s *Slide) textBox(text string, x, y, cx, cy int64, size int, bold, italic bool) {
	id := s.shapeID()
	props := fmt.Sprintf(`sz="%d"`, size)
	if bold {
		props += ` b="1"`
	}
	if italic {
		props += ` i="1"`
	}
	fmt.Fprintf(&s.shapes,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square"/><a:p>`+
			`<a:r><a:rPr lang="en-US" %s dirty="0"/><a:t>%s</a:t></a:r>`+
			`</a:p></p:txBody></p:sp>`,
		id, id, x, y, cx, cy, props, esc(text))
}

// Image places a PNG picture on the slide.
func (s *Slide) Image(png []byte, x, y, cx, cy int64) {
	n := len(s.pres.images) + 1
	name := fmt.Sprintf("image%d.png", n)
	s.pres.images = append(s.pres.images, slideImage{name: name, data: png})
	relID := fmt.Sprintf("rIdImg%d", len(s.relIDs)+1)
	s.relIDs = append(s.relIDs, name)

	id := s.shapeID()
	fmt.Fprintf(&s.shapes,
		`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
			`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, name, relID, x, y, cx, cy)
}

// Table places a simple grid with a shaded header row. Column widths split
// the given width evenly.
func (s *Slide) Table(headers []string, rows [][]string, x, y, cx int64) {
	if len(headers) == 0 {
		return
	}
	id := s.shapeID()
	colW := cx / int64(len(headers))
	rowH := Inches(0.35)
	cy := rowH * int64(len(rows)+1)

	fmt.Fprintf(&s.shapes,
		`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/>`+
			`<p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`+
			`<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`+
			`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">`+
			`<a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>`,
		id, id, x, y, cx, cy)
	for range headers {
		fmt.Fprintf(&s.shapes, `<a:gridCol w="%d"/>`, colW)
	}
	s.shapes.WriteString(`</a:tblGrid>`)

	s.tableRow(headers, rowH, true)
	for _, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		s.tableRow(cells, rowH, false)
	}
	s.shapes.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}

func (s *Slide) tableRow(cells []string, h int64, header bool) {
	fmt.Fprintf(&s.shapes, `<a:tr h="%d">`, h)
	for _, cell := range cells {
		runProps := `sz="1200"`
		fill := ""
		if header {
			runProps = `sz="1200" b="1"`
			fill = `<a:solidFill><a:srgbClr val="D9E2F3"/></a:solidFill>`
		}
		fmt.Fprintf(&s.shapes,
			`<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:rPr lang="en-US" %s/><a:t>%s</a:t></a:r></a:p></a:txBody>`+
				`<a:tcPr>%s</a:tcPr></a:tc>`,
			runProps, esc(cell), fill)
	}
	s.shapes.WriteString(`</a:tr>`)
}

// Bytes assembles the deck into a .pptx package.
func (p *Presentation) Bytes() ([]byte, error) {
	var types strings.Builder
	types.WriteString(xmlHeader)
	types.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	types.WriteString(defaultExtensions)
	types.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	types.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	types.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	types.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range p.slides {
		fmt.Fprintf(&types,
			`<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`,
			i+1)
	}
	types.WriteString(`</Types>`)

	presRels := []relationship{
		{id: "rId1", relType: relTypeSlideMstr, target: "slideMasters/slideMaster1.xml"},
	}
	var sldIDs strings.Builder
	for i := range p.slides {
		relID := fmt.Sprintf("rId%d", i+2)
		presRels = append(presRels, relationship{
			id: relID, relType: relTypeSlide, target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 256+i, relID)
	}

	pres := xmlHeader + fmt.Sprintf(
		`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`+
			` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`+
			` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
			`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
			`<p:sldIdLst>%s</p:sldIdLst>`+
			`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`+
			`</p:presentation>`,
		sldIDs.String(), SlideWidth, SlideHeight, SlideHeight, SlideWidth)

	parts := []part{
		{name: contentTypesPart, data: []byte(types.String())},
		{name: "_rels/.rels", data: relationships([]relationship{
			{id: "rId1", relType: relTypeDocument, target: "ppt/presentation.xml"},
		})},
		{name: "ppt/presentation.xml", data: []byte(pres)},
		{name: "ppt/_rels/presentation.xml.rels", data: relationships(presRels)},
		{name: "ppt/slideMasters/slideMaster1.xml", data: []byte(slideMasterXML)},
		{name: "ppt/slideMasters/_rels/slideMaster1.xml.rels", data: relationships([]relationship{
			{id: "rId1", relType: relTypeSlideLay, target: "../slideLayouts/slideLayout1.xml"},
			{id: "rId2", relType: relTypeTheme, target: "../theme/theme1.xml"},
		})},
		{name: "ppt/slideLayouts/slideLayout1.xml", data: []byte(slideLayoutXML)},
		{name: "ppt/slideLayouts/_rels/slideLayout1.xml.rels", data: relationships([]relationship{
			{id: "rId1", relType: relTypeSlideMstr, target: "../slideMasters/slideMaster1.xml"},
		})},
		{name: "ppt/theme/theme1.xml", data: []byte(themeXML)},
	}

	for i, slide := range p.slides {
		slideXML := xmlHeader + fmt.Sprintf(
			`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`+
				` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`+
				` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
				`<p:cSld><p:spTree>`+
				`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
				`<p:grpSpPr/>%s</p:spTree></p:cSld></p:sld>`,
			slide.shapes.String())

		rels := []relationship{
			{id: "rId1", relType: relTypeSlideLay, target: "../slideLayouts/slideLayout1.xml"},
		}
		for j, imgName := range slide.relIDs {
			rels = append(rels, relationship{
				id: fmt.Sprintf("rIdImg%d", j+1), relType: relTypeImage, target: "../media/" + imgName,
			})
		}
		parts = append(parts,
			part{name: fmt.Sprintf("ppt/slides/slide%d.xml", i+1), data: []byte(slideXML)},
			part{name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), data: relationships(rels)},
		)
	}
	for _, img := range p.images {
		parts = append(parts, part{name: "ppt/media/" + img.name, data: img.data})
	}
	return writePackage(parts)
}

const slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/></p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2"` +
	` accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" type="blank">` +
	`<p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/></p:spTree></p:cSld></p:sldLayout>`

const themeXML = xmlHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Report">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Report">` +
	`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Report">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Report">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme></a:themeElements></a:theme>`
