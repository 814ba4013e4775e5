package scan

import (
	"fmt"
	"regexp"
	"strings"
)

// docChunker splits a markdown/rst file into semantic chunks, one Document
// per chunk, by splitting on level-2 headers and then on paragraph breaks
// for any section still larger than targetSize, never splitting inside a
// fenced code block. Adapted from the teacher's chunker.go, which produced
// a separate DocumentationChunk type; here it builds Documents of type
// "doc" so the scanner has a single output shape.
type docChunker struct {
	targetSize int // approximate token budget per chunk
}

var (
	headerPattern    = regexp.MustCompile(`^##\s+`)
	codeFencePattern = regexp.MustCompile("^```")
)

func newDocChunker(targetSize int) *docChunker {
	if targetSize <= 0 {
		targetSize = 400
	}
	return &docChunker{targetSize: targetSize}
}

func (c *docChunker) chunk(relPath string, content string) []Document {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	var docs []Document
	for sectionIdx, sec := range c.splitByHeaders(lines) {
		docs = append(docs, c.processSection(relPath, sectionIdx, sec)...)
	}
	return docs
}

type docSection struct {
	startLine int
	lines     []string
}

func (c *docChunker) splitByHeaders(lines []string) []docSection {
	var sections []docSection
	current := docSection{startLine: 1}

	for i, line := range lines {
		if headerPattern.MatchString(line) && i > 0 {
			if len(current.lines) > 0 {
				sections = append(sections, current)
			}
			current = docSection{startLine: i + 1, lines: []string{line}}
			continue
		}
		current.lines = append(current.lines, line)
	}
	if len(current.lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}

func (c *docChunker) processSection(relPath string, sectionIdx int, sec docSection) []Document {
	text := strings.Join(sec.lines, "\n")
	if estimateTokens(text) <= c.targetSize {
		return []Document{c.buildDoc(relPath, sectionIdx, 0, strings.TrimSpace(text), sec.startLine, sec.startLine+len(sec.lines)-1)}
	}
	return c.splitByParagraphs(relPath, sectionIdx, sec)
}

type docParagraph struct {
	text      string
	startLine int
	endLine   int
}

func (c *docChunker) splitByParagraphs(relPath string, sectionIdx int, sec docSection) []Document {
	paragraphs := c.extractParagraphs(sec.lines, sec.startLine)

	var docs []Document
	var current []docParagraph
	currentSize := 0
	chunkIdx := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, p := range current {
			texts[i] = p.text
		}
		docs = append(docs, c.buildDoc(relPath, sectionIdx, chunkIdx, strings.Join(texts, "\n\n"), current[0].startLine, current[len(current)-1].endLine))
		chunkIdx++
		current = nil
		currentSize = 0
	}

	for _, para := range paragraphs {
		size := estimateTokens(para.text)
		if currentSize > 0 && currentSize+size > c.targetSize {
			flush()
		}
		current = append(current, para)
		currentSize += size
	}
	flush()
	return docs
}

func (c *docChunker) extractParagraphs(lines []string, startLine int) []docParagraph {
	var paragraphs []docParagraph
	var current []string
	currentStart := startLine
	inCode := false

	finalize := func(endLine int) {
		if len(current) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			paragraphs = append(paragraphs, docParagraph{text: text, startLine: currentStart, endLine: endLine})
		}
		current = nil
	}

	for i, line := range lines {
		lineNum := startLine + i

		if codeFencePattern.MatchString(line) {
			if !inCode {
				finalize(lineNum - 1)
				inCode = true
				currentStart = lineNum
				current = append(current, line)
			} else {
				current = append(current, line)
				finalize(lineNum)
				inCode = false
				currentStart = lineNum + 1
			}
			continue
		}

		if inCode {
			current = append(current, line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			finalize(lineNum - 1)
			currentStart = lineNum + 1
			continue
		}
		current = append(current, line)
	}
	finalize(startLine + len(lines) - 1)
	return paragraphs
}

func (c *docChunker) buildDoc(relPath string, sectionIdx, chunkIdx int, text string, startLine, endLine int) Document {
	id := fmt.Sprintf("%s:doc:%d:%d:%d", relPath, sectionIdx, chunkIdx, startLine)
	return Document{
		ID:       id,
		Language: "markdown",
		Text:     text,
		Metadata: Metadata{
			File:      relPath,
			Path:      relPath,
			Type:      ComponentDoc,
			Name:      firstLine(text),
			StartLine: startLine,
			EndLine:   endLine,
			Snippet:   truncate(text, 400),
		},
	}
}

func estimateTokens(text string) int {
	return len(text) / 4
}
