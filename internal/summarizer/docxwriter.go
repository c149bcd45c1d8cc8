package summarizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	textColor = "000000"
	mutedText = "555555"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockBullet
	blockNumbered
	blockQuote
)

// block is one rendered line of a markdown summary.
type block struct {
	kind   blockKind
	level  int // heading level, 1-6
	number int // list ordinal for blockNumbered
	text   string
}

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*\+]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^(\d+)[\.\)]\s+(.+)$`)
	reQuote    = regexp.MustCompile(`^>\s?(.*)$`)
	reRule     = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
)

// parseMarkdown classifies the summary's lines. Blank lines and rules are dropped.
func parseMarkdown(markdown string) []block {
	var blocks []block
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || reRule.MatchString(line) {
			continue
		}

		switch {
		case reHeading.MatchString(line):
			m := reHeading.FindStringSubmatch(line)
			blocks = append(blocks, block{kind: blockHeading, level: len(m[1]), text: m[2]})
		case reBullet.MatchString(line):
			blocks = append(blocks, block{kind: blockBullet, text: reBullet.FindStringSubmatch(line)[1]})
		case reNumbered.MatchString(line):
			m := reNumbered.FindStringSubmatch(line)
			n, _ := strconv.Atoi(m[1])
			blocks = append(blocks, block{kind: blockNumbered, number: n, text: m[2]})
		case reQuote.MatchString(line):
			blocks = append(blocks, block{kind: blockQuote, text: reQuote.FindStringSubmatch(line)[1]})
		default:
			blocks = append(blocks, block{kind: blockParagraph, text: line})
		}
	}
	return blocks
}

// markdownToDocx renders the summary as summary.docx under a bold title.
func markdownToDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if title != "" {
		writeRun(doc.AddParagraph(""), title, 16, true, textColor)
	}

	for _, b := range parseMarkdown(markdown) {
		p := doc.AddParagraph("")
		switch b.kind {
		case blockHeading:
			writeRun(p, b.text, headingSize(b.level), true, textColor)
		case blockBullet:
			writeInline(p, "• "+b.text)
		case blockNumbered:
			writeRun(p, strconv.Itoa(b.number)+". ", fontSize, true, textColor)
			writeInline(p, b.text)
		case blockQuote:
			writeRun(p, b.text, fontSize, false, mutedText)
		default:
			writeInline(p, b.text)
		}
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save docx %s: %w", outputPath, err)
	}
	return nil
}

func headingSize(level int) uint64 {
	if level >= 4 {
		return fontSize
	}
	return uint64(17 - level)
}

func writeRun(p *docx.Paragraph, text string, size uint64, bold bool, color string) {
	run := p.AddText(stripInline(text)).Font(fontName).Size(size).Color(color)
	if bold {
		run.Bold(true)
	}
}

// writeInline keeps **bold** spans bold and strips the remaining markup.
func writeInline(p *docx.Paragraph, text string) {
	for _, s := range splitBold(text) {
		if s.text == "" {
			continue
		}
		writeRun(p, s.text, fontSize, s.bold, textColor)
	}
}

type span struct {
	text string
	bold bool
}

func splitBold(text string) []span {
	var spans []span
	last := 0
	for _, loc := range reBold.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{text: text[last:loc[0]]})
		spans = append(spans, span{text: text[loc[2]:loc[3]], bold: true})
		last = loc[1]
	}
	return append(spans, span{text: text[last:]})
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
