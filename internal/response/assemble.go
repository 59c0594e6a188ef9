package response

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/russellconstruction9/RRsolutions/internal/document"
)

// Document titles produced by the assembler.
const (
	TitleScopeOfWork       = "Section 1: Project Scope of Work"
	TitleProjectBudget     = "Section 2: Project Budget"
	TitleSelectionSchedule = "Section 4: Customer Selection Schedule"
	WorkOrderTitlePrefix   = "Work Order: "
	FallbackTitle          = "Generated Document"
)

const (
	tableOpen = `<table border="1" style="width:100%; border-collapse: collapse;">`
	cellStyle = `padding: 8px; border: 1px solid #ddd;`
	headStyle = cellStyle + ` text-align: left; background-color: #f2f2f2;`
	footStyle = cellStyle + ` text-align:right;`

	fallbackNote = "The AI returned an unexpected response. Please see the raw data below:"
)

var (
	budgetColumns = []string{
		"Category/Task",
		"Description",
		"Material Budget (RCV)",
		"Labor Budget (RCV)",
		"Total Budget (RCV)",
	}
	selectionColumns = []string{
		"Selection Item",
		"Location(s)",
		"Total Quantity",
		"Material Allowance (per Unit)",
		"Total Material Budget (RCV)",
	}
)

// Assemble renders each present section of est in display order: scope of
// work, budget, one document per work order, selection schedule. When no
// section is present the raw response is shown in a single fallback document.
func Assemble(est *Estimate) []document.Document {
	var docs []document.Document

	if est.ScopeOfWork != nil {
		docs = append(docs, document.Document{Title: TitleScopeOfWork, Content: renderScope(est.ScopeOfWork)})
	}
	if est.ProjectBudget != nil {
		docs = append(docs, document.Document{Title: TitleProjectBudget, Content: renderBudget(est.ProjectBudget)})
	}
	for i := range est.WorkOrders {
		wo := &est.WorkOrders[i]
		docs = append(docs, document.Document{
			Title:   WorkOrderTitlePrefix + wo.Trade.Or("N/A"),
			Content: renderWorkOrder(wo),
		})
	}
	if est.SelectionSchedule != nil {
		docs = append(docs, document.Document{Title: TitleSelectionSchedule, Content: renderSelections(est.SelectionSchedule)})
	}

	if len(docs) == 0 {
		docs = append(docs, document.Document{Title: FallbackTitle, Content: renderFallback(est.Raw)})
	}
	return docs
}

func renderScope(s *ScopeOfWork) string {
	var b strings.Builder
	labeled(&b, "Client:", s.ClientName.Or("N/A"))
	labeled(&b, "Address:", s.ProjectAddress.Or("N/A"))
	labeled(&b, "Claim #:", s.ClaimNumber.Or("N/A"))
	b.WriteString("<h2>Overall Project Summary</h2>\n")
	b.WriteString("<p>" + esc(string(s.OverallSummary)) + "</p>\n")

	for _, area := range s.Breakdown {
		b.WriteString("<h3>" + esc(area.Area.Or("N/A")) + "</h3>\n")
		if len(area.DemolitionTasks) > 0 {
			b.WriteString("<h4>Demolition</h4>")
			list(&b, "ul", area.DemolitionTasks)
		}
		if len(area.RestorationTasks) > 0 {
			b.WriteString("<h4>Restoration</h4>")
			list(&b, "ul", area.RestorationTasks)
		}
	}
	return strings.TrimSpace(b.String())
}

func renderBudget(p *ProjectBudget) string {
	var b strings.Builder
	b.WriteString("<p>" + esc(string(p.BudgetSourceInfo)) + "</p>\n")
	b.WriteString(tableOpen + "\n")
	headerRow(&b, budgetColumns)
	b.WriteString("<tbody>\n")
	for _, it := range p.LineItems {
		row(&b,
			esc(string(it.Category)),
			esc(string(it.Description)),
			it.MaterialBudget.String(),
			it.LaborBudget.String(),
			it.TotalBudget.String(),
		)
	}
	footerRow(&b, "Subtotal (Line Items)", p.Subtotal)
	footerRow(&b, "Material Sales Tax", p.SalesTax)
	footerRow(&b, "Overhead &amp; Profit", p.OverheadAndProfit)
	footerRow(&b, "TOTAL PROJECT BUDGET", p.TotalProjectBudget)
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func renderWorkOrder(wo *WorkOrder) string {
	var b strings.Builder
	b.WriteString("<p><strong>BUDGET (RCV):</strong> " + wo.Budget.String() + "</p>\n")
	labeled(&b, "KEY MATERIALS &amp; QUANTITIES:", wo.KeyMaterials.Or("N/A"))
	b.WriteString("<h3>INSTRUCTIONS:</h3>\n")
	list(&b, "ol", wo.Instructions)
	return strings.TrimSpace(b.String())
}

func renderSelections(s *SelectionSchedule) string {
	var b strings.Builder
	b.WriteString("<p>" + esc(string(s.IntroductoryNote)) + "</p>\n")
	b.WriteString(tableOpen + "\n")
	headerRow(&b, selectionColumns)
	b.WriteString("<tbody>\n")
	for _, it := range s.Items {
		row(&b,
			esc(string(it.Item)),
			esc(string(it.Locations)),
			esc(string(it.Quantity)),
			it.AllowancePerUnit.String(),
			it.TotalMaterialBudget.String(),
		)
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func renderFallback(raw json.RawMessage) string {
	var pretty bytes.Buffer
	dump := string(raw)
	if err := json.Indent(&pretty, raw, "", "  "); err == nil {
		dump = pretty.String()
	}
	return "<p>" + fallbackNote + "</p><pre>" + esc(dump) + "</pre>"
}

// labeled writes <p><strong>label</strong> value</p>. label is trusted markup.
func labeled(b *strings.Builder, label, value string) {
	b.WriteString("<p><strong>" + label + "</strong> " + esc(value) + "</p>\n")
}

func list(b *strings.Builder, tag string, items []string) {
	b.WriteString("<" + tag + ">")
	for _, it := range items {
		b.WriteString("<li>" + esc(it) + "</li>")
	}
	b.WriteString("</" + tag + ">\n")
}

func headerRow(b *strings.Builder, columns []string) {
	b.WriteString("<thead>\n<tr>")
	for _, c := range columns {
		b.WriteString(`<th style="` + headStyle + `">` + c + "</th>")
	}
	b.WriteString("</tr>\n</thead>\n")
}

// row writes one body row. Cells are already escaped.
func row(b *strings.Builder, cells ...string) {
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString(`<td style="` + cellStyle + `">` + c + "</td>")
	}
	b.WriteString("</tr>\n")
}

func footerRow(b *strings.Builder, label string, v Amount) {
	b.WriteString(`<tr><td colspan="4" style="` + footStyle + `"><strong>` + label + `</strong></td>`)
	b.WriteString(`<td style="` + cellStyle + `"><strong>` + v.String() + "</strong></td></tr>\n")
}

func esc(s string) string {
	return html.EscapeString(s)
}
