package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxPartSize bounds how much of a single OOXML part is decompressed.
const maxPartSize = 64 << 20

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// docxText returns the paragraphs of word/document.xml, one per line.
func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			paragraphs, err := readParagraphs(f, "p", "t")
			if err != nil {
				return "", err
			}
			return strings.Join(paragraphs, "\n"), nil
		}
	}
	return "", errors.New("word/document.xml not found")
}

// pptxText returns every non-empty text paragraph prefixed with its slide number,
// slides ordered numerically.
func pptxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{num: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var lines []string
	for i, s := range slides {
		paragraphs, err := readParagraphs(s.file, "p", "t")
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.num, err)
		}
		for _, p := range paragraphs {
			lines = append(lines, fmt.Sprintf("Slide %d: %s", i+1, p))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// readParagraphs streams an OOXML part and returns the concatenated text of each
// paragraph element. Elements are matched by local name so the same walker serves
// WordprocessingML (w:p/w:t) and DrawingML (a:p/a:t). Empty paragraphs are dropped.
func readParagraphs(f *zip.File, paragraphTag, textTag string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, maxPartSize))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case textTag:
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textTag:
				inText = false
			case paragraphTag:
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
