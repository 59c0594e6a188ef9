package generate

import (
	"fmt"
	"strings"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

const validationRules = `**Validation Rules:**
1.  **Total Project Budget:** The definitive budget is the dollar amount in the PDF filename (e.g., "Estimate-$12345.67.pdf"). If not present, use the final "Replacement Cost Value" (RCV) from the PDF's summary. You must state the source you used.
2.  **Budget Calculation:** For budget line items, use 80% of the original RCV as the direct cost for materials and labor. The remaining 20% should be accounted for in the overhead and profit calculation to ensure the final total matches the definitive budget.
3.  **Plain Language:** Translate insurance jargon (e.g., "R&R," "DET") into clear, actionable tasks (e.g., "Remove and replace," "Detach and reset").`

// JSONInstruction asks for a single JSON object matching ReportSchema.
const JSONInstruction = `You are an AI assistant specialized in construction project management. Analyze the provided property insurance claim estimate PDF and transform it into a structured JSON object.

` + validationRules + `

**Task:**
Analyze the entire document and generate a single, valid JSON object that adheres to the provided schema. State the budget source in the 'budgetSourceInfo' field. The data must be internally consistent. For example, the total of the work order budgets should align with the main project budget.
`

// MarkdownInstruction asks for a sectioned markdown report.
const MarkdownInstruction = `You are an AI assistant specialized in construction project management. Analyze the provided property insurance claim estimate PDF and transform it into a sectioned markdown report.

` + validationRules + `

**Output Format:**
Start every section with a level-three heading on its own line, using exactly these forms:
- "### Section 1: Project Scope of Work" with the client, address, claim number, an overall summary, and a breakdown of demolition and restoration tasks per area.
- "### Section 2: Project Budget" with the budget source followed by an HTML <table> of line items (category, description, material, labor, total) and rows for subtotal, sales tax, overhead and profit, and the total project budget.
- "### Work Order: <Trade>" once per trade, with the trade budget, key materials and quantities, and numbered instructions.
- "### Section 4: Customer Selection Schedule" with an introductory note and an HTML <table> of items, locations, quantities, allowance per unit and total material budget.

Use "#### " for sub-headings inside a section, "* " for bullets, and **bold** for labels. Write every table as HTML, never as a markdown pipe table. Do not write anything before the first section heading.
`

// SystemInstruction returns the system prompt for the requested format.
func SystemInstruction(format response.Format) string {
	if format == response.FormatMarkdown {
		return MarkdownInstruction
	}
	return JSONInstruction
}

// BuildReportPrompt creates the user turn that accompanies the PDF.
func BuildReportPrompt(filename string, format response.Format, textHint string) string {
	var sb strings.Builder
	output := "JSON output"
	if format == response.FormatMarkdown {
		output = "sectioned report"
	}
	fmt.Fprintf(&sb, "PDF Filename for budget validation: %q. Please analyze the attached PDF and generate the required %s based on your instructions.", filename, output)
	if strings.TrimSpace(textHint) != "" {
		sb.WriteString("\n\nText extracted from the PDF (may be incomplete or out of order):\n---\n")
		sb.WriteString(textHint)
		sb.WriteString("\n---")
	}
	return sb.String()
}

// BuildPDFPrompt asks the model to lay out html as a branded PDF.
func BuildPDFPrompt(title, html string, b branding.Profile) string {
	var sb strings.Builder
	sb.WriteString("You are a professional document designer. Your task is to create a branded PDF document from the provided HTML content and company branding information.\n\n")
	sb.WriteString("**Company Branding Information:**\n")
	fmt.Fprintf(&sb, "- Company Name: %s\n", b.CompanyName)
	writeField(&sb, "Address", b.Address)
	writeField(&sb, "Phone", b.Phone)
	writeField(&sb, "Email", b.Email)
	writeField(&sb, "Website", b.Website)
	writeField(&sb, "Certifications", strings.Join(b.Certifications, ", "))
	writeField(&sb, "Font", b.Font)
	if b.PrimaryColor != "" {
		fmt.Fprintf(&sb, "- Primary Color: Use %s for accents (e.g., headers).\n", b.PrimaryColor)
	}
	if b.TextColor != "" {
		fmt.Fprintf(&sb, "- Neutral Color: %s for body text.\n", b.TextColor)
	}
	sb.WriteString(`
**Instructions:**
1.  Create a professional, clean, and modern layout for the PDF.
2.  Add a header to each page that includes the company name and contact information. A simple, clean footer with the website and page number is also appropriate.
3.  Use the specified fonts and colors to style the document.
4.  The main content of the document is provided below in HTML format. Render this HTML content as the body of the PDF.
5.  The final output must be a single JSON object containing the base64-encoded string of the generated PDF file. Do not include any other text or explanation.

`)
	fmt.Fprintf(&sb, "**Document Title:** %s\n\n", title)
	sb.WriteString("**HTML Content to include in the PDF body:**\n```html\n")
	sb.WriteString(html)
	sb.WriteString("\n```\n")
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}
