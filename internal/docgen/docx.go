package docgen

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// A .docx file is a zip with three required members. The document body
// is plain WordprocessingML built here by hand; nothing fancier than
// headings and paragraphs is needed for a BRD.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Section is one BRD section ready for rendering.
type Section struct {
	Title string
	Body  string
}

// BaseSections builds the six BRD sections straight from the gathered
// requirement. The generator replaces bodies with drafted prose when
// the LLM is reachable; these serve as the per-section fallback.
func BaseSections(r models.AgentRequirement) []Section {
	name := orNA(r.AgentName)
	return []Section{
		{"Executive Summary", fmt.Sprintf(
			"%s is a proposed AI agent for %s working in the %s industry. "+
				"This document captures the requirement as discovered through a guided conversation and serves as the baseline for solution design.",
			name, orNA(r.ApplicablePersona), orNA(r.ApplicableIndustry))},
		{"Problem Statement", orNA(r.ProblemStatement)},
		{"Proposed Solution", fmt.Sprintf(
			"Build %s, an AI agent that addresses the problem above. Its differentiator: %s.",
			name, orNA(r.WowFactor))},
		{"User Journeys", orNA(r.UserJourneys)},
		{"Success Metrics", fmt.Sprintf(
			"Adoption by the target persona (%s), measurable reduction of the stated problem, and delivery of the expected output at agreed quality.",
			orNA(r.ApplicablePersona))},
		{"Expected Output", orNA(r.ExpectedOutput)},
	}
}

// WriteBRD renders the sections as a BRD at path.
func WriteBRD(path string, r models.AgentRequirement, sections []Section) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	members := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(r, sections)},
	}
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(m.body)); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func documentXML(r models.AgentRequirement, sections []Section) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	b.WriteString(heading("Business Requirements Document: " + orNA(r.AgentName)))
	for _, s := range sections {
		b.WriteString(section(s.Title, s.Body))
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func section(title, body string) string {
	return heading(title) + paragraph(body)
}

func heading(text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` +
		escape(text) + `</w:t></w:r></w:p>`
}

func paragraph(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		b.WriteString(escape(line))
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string { return xmlEscaper.Replace(s) }

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NA
	}
	return s
}
