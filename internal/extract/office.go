package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reHeadingStyle = regexp.MustCompile(`(?i)^heading\s*([1-6])$`)
	reSlidePart    = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

func convertDOCX(file string, structured bool) (*ConversionResult, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	part, err := readPart(&zr.Reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer func() { _ = part.Close() }()

	blocks, err := walkOOXML(part, structured)
	if err != nil {
		return nil, fmt.Errorf("parse word/document.xml: %w", err)
	}
	// word documents are reflowable; no page collection
	return &ConversionResult{Document: Document{Markdown: strings.Join(blocks, "\n\n"), Pages: []Page{}}}, nil
}

func convertPPTX(file string, structured bool) (*ConversionResult, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	slides := slideParts(&zr.Reader)
	sections := make([]string, 0, len(slides))
	for i, f := range slides {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		blocks, err := walkOOXML(rc, structured)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		section := fmt.Sprintf("## Slide %d", i+1)
		if len(blocks) > 0 {
			section += "\n\n" + strings.Join(blocks, "\n\n")
		}
		sections = append(sections, section)
	}
	return &ConversionResult{Document: Document{Markdown: strings.Join(sections, "\n\n"), Pages: pagesOf(len(slides))}}, nil
}

// slideParts returns the slides in presentation order: the sldIdLst of
// ppt/presentation.xml resolved through its relationships. Without a usable list the
// slides are ordered by the number in their part name.
func slideParts(zr *zip.Reader) []*zip.File {
	byName := map[string]*zip.File{}
	var numbered []*zip.File
	for _, f := range zr.File {
		byName[f.Name] = f
		if reSlidePart.MatchString(f.Name) {
			numbered = append(numbered, f)
		}
	}

	if ordered := presentationOrder(byName); len(ordered) > 0 {
		return ordered
	}
	sort.Slice(numbered, func(i, j int) bool {
		return slideNumber(numbered[i].Name) < slideNumber(numbered[j].Name)
	})
	return numbered
}

func slideNumber(name string) int {
	m := reSlidePart.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

type presentationPart struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsPart struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func presentationOrder(byName map[string]*zip.File) []*zip.File {
	var pres presentationPart
	var rels relationshipsPart
	if decodePart(byName["ppt/presentation.xml"], &pres) != nil || decodePart(byName["ppt/_rels/presentation.xml.rels"], &rels) != nil {
		return nil
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = r.Target
	}

	ordered := make([]*zip.File, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		target := targets[id.RelID]
		name := path.Clean(path.Join("ppt", target))
		if strings.HasPrefix(target, "/") {
			name = strings.TrimPrefix(path.Clean(target), "/")
		}
		if f, ok := byName[name]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

func decodePart(f *zip.File, v any) error {
	if f == nil {
		return errors.New("missing part")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return xml.NewDecoder(rc).Decode(v)
}

func readPart(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("missing part %s", name)
}

// walkOOXML turns WordprocessingML or DrawingML into markdown blocks. Both share the
// local element names p (paragraph), t (text run), tbl/tr/tc (tables).
func walkOOXML(r io.Reader, structured bool) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		blocks     []string
		para       strings.Builder
		style      string
		isList     bool
		inText     bool
		tableDepth int
		table      [][]string
		row        []string
		cell       strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				para.Reset()
				style = ""
				isList = false
			case "pStyle":
				style = attrValue(t, "val")
			case "numPr", "buChar", "buAutoNum":
				isList = true
			case "t":
				inText = true
			case "tab":
				para.WriteString(" ")
			case "br", "cr":
				para.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				if text == "" {
					continue
				}
				if tableDepth > 0 {
					if cell.Len() > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
					continue
				}
				blocks = append(blocks, renderParagraph(text, style, isList))
			case "tc":
				if tableDepth == 1 {
					row = append(row, cell.String())
				}
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					if md := renderTable(table, structured); md != "" {
						blocks = append(blocks, md)
					}
				}
			}
		}
	}
	return blocks, nil
}

func renderParagraph(text, style string, isList bool) string {
	switch {
	case strings.EqualFold(style, "Title"):
		return "# " + text
	case reHeadingStyle.MatchString(style):
		level, _ := strconv.Atoi(reHeadingStyle.FindStringSubmatch(style)[1])
		return strings.Repeat("#", level) + " " + text
	case isList:
		return "- " + text
	default:
		return text
	}
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
