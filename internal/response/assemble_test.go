package response

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

const fullEstimate = `{
  "scopeOfWork": {
    "clientName": "Jane Doe",
    "projectAddress": "12 Lake St, Warsaw, IN",
    "claimNumber": "CLM-0042",
    "overallSummary": "Water loss in kitchen & bath.",
    "breakdown": [
      {"area": "Kitchen", "demolitionTasks": ["Remove base cabinets"], "restorationTasks": ["Install cabinets", "Paint walls"]},
      {"area": "Bathroom", "demolitionTasks": [], "restorationTasks": ["Reset toilet"]}
    ]
  },
  "projectBudget": {
    "budgetSourceInfo": "Budget taken from filename.",
    "lineItems": [
      {"category": "Drywall", "description": "Hang and finish", "materialBudget": 400, "laborBudget": 600, "totalBudget": 1000},
      {"category": "Painting", "description": "Two coats", "materialBudget": 150.5, "laborBudget": 349.5, "totalBudget": 500}
    ],
    "subtotal": 1500,
    "salesTax": 42.25,
    "overheadAndProfit": 375,
    "totalProjectBudget": 1917.25
  },
  "workOrders": [
    {"trade": "Drywall", "budget": 1000, "keyMaterials": "12 sheets 1/2\" board", "instructions": ["Hang board", "Tape and mud"]},
    {"trade": "Painting", "budget": 500}
  ],
  "selectionSchedule": {
    "introductoryNote": "Please choose finishes.",
    "items": [
      {"item": "Cabinet pulls", "locations": "Kitchen", "quantity": "14 ea", "allowancePerUnit": 6.5, "totalMaterialBudget": 91}
    ]
  }
}`

func TestAssemble_TitlesAndOrder(t *testing.T) {
	est, err := DecodeEstimate(fullEstimate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := Assemble(est)

	var titles []string
	for _, d := range docs {
		titles = append(titles, d.Title)
	}
	want := []string{
		"Section 1: Project Scope of Work",
		"Section 2: Project Budget",
		"Work Order: Drywall",
		"Work Order: Painting",
		"Section 4: Customer Selection Schedule",
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}

	again := Assemble(est)
	if diff := cmp.Diff(docs, again); diff != "" {
		t.Errorf("expected deterministic output (-first +second):\n%s", diff)
	}
}

func TestAssemble_ScopeContent(t *testing.T) {
	est, _ := DecodeEstimate(fullEstimate)
	scope := Assemble(est)[0].Content

	for _, want := range []string{
		"<p><strong>Client:</strong> Jane Doe</p>",
		"<p><strong>Claim #:</strong> CLM-0042</p>",
		"<h2>Overall Project Summary</h2>",
		"<p>Water loss in kitchen &amp; bath.</p>",
		"<h3>Kitchen</h3>",
		"<h4>Demolition</h4><ul><li>Remove base cabinets</li></ul>",
		"<h4>Restoration</h4><ul><li>Install cabinets</li><li>Paint walls</li></ul>",
	} {
		if !strings.Contains(scope, want) {
			t.Errorf("expected scope to contain %q, got %q", want, scope)
		}
	}
	bathroom := scope[strings.Index(scope, "<h3>Bathroom</h3>"):]
	if strings.Contains(bathroom, "Demolition") {
		t.Errorf("expected no demolition list for an empty task list, got %q", bathroom)
	}
}

func TestAssemble_BudgetContent(t *testing.T) {
	est, _ := DecodeEstimate(fullEstimate)
	budget := Assemble(est)[1].Content

	if !strings.HasPrefix(budget, "<p>Budget taken from filename.</p>") {
		t.Errorf("expected budget source paragraph first, got %q", budget)
	}
	for _, want := range []string{"$150.50", "$349.50", "$1,500.00", "$42.25", "$375.00", "$1,917.25"} {
		if !strings.Contains(budget, want) {
			t.Errorf("expected budget to contain %q", want)
		}
	}

	labels := []string{"Subtotal (Line Items)", "Material Sales Tax", "Overhead &amp; Profit", "TOTAL PROJECT BUDGET"}
	last := -1
	for _, l := range labels {
		i := strings.Index(budget, l)
		if i < 0 {
			t.Fatalf("expected footer %q", l)
		}
		if i < last {
			t.Errorf("expected footer %q after the previous footer", l)
		}
		last = i
	}
	if n := strings.Count(budget, `colspan="4"`); n != 4 {
		t.Errorf("expected 4 spanning footer labels, got %d", n)
	}
}

func TestAssemble_WorkOrderContent(t *testing.T) {
	est, _ := DecodeEstimate(fullEstimate)
	docs := Assemble(est)

	drywall := docs[2].Content
	for _, want := range []string{
		"<p><strong>BUDGET (RCV):</strong> $1,000.00</p>",
		"<p><strong>KEY MATERIALS &amp; QUANTITIES:</strong> 12 sheets 1/2&#34; board</p>",
		"<h3>INSTRUCTIONS:</h3>",
		"<ol><li>Hang board</li><li>Tape and mud</li></ol>",
	} {
		if !strings.Contains(drywall, want) {
			t.Errorf("expected work order to contain %q, got %q", want, drywall)
		}
	}

	painting := docs[3].Content
	if !strings.Contains(painting, "QUANTITIES:</strong> N/A</p>") {
		t.Errorf("expected N/A key materials, got %q", painting)
	}
	if !strings.Contains(painting, "<ol></ol>") {
		t.Errorf("expected an empty instruction list, got %q", painting)
	}
}

func TestAssemble_SelectionContent(t *testing.T) {
	est, _ := DecodeEstimate(fullEstimate)
	sel := Assemble(est)[4].Content
	for _, want := range []string{"Selection Item", "Location(s)", "Material Allowance (per Unit)", "Cabinet pulls", "14 ea", "$6.50", "$91.00"} {
		if !strings.Contains(sel, want) {
			t.Errorf("expected selection schedule to contain %q", want)
		}
	}
}

func TestAssemble_AllFieldsAbsent(t *testing.T) {
	body := `{"scopeOfWork":{"breakdown":[{}]},"projectBudget":{"lineItems":[{}]},"workOrders":[{}],"selectionSchedule":{"items":[{}]}}`
	est, err := DecodeEstimate(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := Assemble(est)
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}

	scope := docs[0].Content
	for _, want := range []string{"Client:</strong> N/A", "Address:</strong> N/A", "Claim #:</strong> N/A", "<h3>N/A</h3>", "<h2>Overall Project Summary</h2>\n<p></p>"} {
		if !strings.Contains(scope, want) {
			t.Errorf("expected scope default %q, got %q", want, scope)
		}
	}

	budget := docs[1].Content
	if n := strings.Count(budget, "$0.00"); n != 7 {
		t.Errorf("expected 7 placeholder amounts (3 line item + 4 footer), got %d", n)
	}
	if docs[2].Title != "Work Order: N/A" {
		t.Errorf("expected default trade, got %q", docs[2].Title)
	}
	if !strings.Contains(docs[2].Content, "BUDGET (RCV):</strong> $0.00") {
		t.Errorf("expected placeholder budget, got %q", docs[2].Content)
	}
	if n := strings.Count(docs[3].Content, "$0.00"); n != 2 {
		t.Errorf("expected 2 placeholder amounts in the selection row, got %d", n)
	}
}

func TestAssemble_Fallback(t *testing.T) {
	est, err := DecodeEstimate(`{"summary":"<b>odd</b>","items":[1,2]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := Assemble(est)
	if len(docs) != 1 || docs[0].Title != FallbackTitle {
		t.Fatalf("expected a single fallback document, got %+v", docs)
	}
	want := "<p>The AI returned an unexpected response. Please see the raw data below:</p>" +
		"<pre>{\n  &#34;summary&#34;: &#34;&lt;b&gt;odd&lt;/b&gt;&#34;,\n  &#34;items&#34;: [\n    1,\n    2\n  ]\n}</pre>"
	if docs[0].Content != want {
		t.Errorf("expected %q, got %q", want, docs[0].Content)
	}
}

func TestAssemble_EscapesValues(t *testing.T) {
	est, _ := DecodeEstimate(`{"workOrders":[{"trade":"<script>x</script>","instructions":["a < b"]}]}`)
	docs := Assemble(est)
	if strings.Contains(docs[0].Content, "<script>") {
		t.Errorf("expected values to be escaped, got %q", docs[0].Content)
	}
	if !strings.Contains(docs[0].Content, "<li>a &lt; b</li>") {
		t.Errorf("expected escaped instruction, got %q", docs[0].Content)
	}
}

func TestAssemble_BalancedMarkup(t *testing.T) {
	est, _ := DecodeEstimate(fullEstimate)
	for _, d := range Assemble(est) {
		if msg := unbalanced(d.Content); msg != "" {
			t.Errorf("%s: %s", d.Title, msg)
		}
	}
}

func unbalanced(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return z.Err().Error()
			}
			if len(stack) > 0 {
				return "unclosed <" + stack[len(stack)-1] + ">"
			}
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			stack = append(stack, string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) == 0 || stack[len(stack)-1] != string(name) {
				return "unexpected </" + string(name) + ">"
			}
			stack = stack[:len(stack)-1]
		}
	}
}
