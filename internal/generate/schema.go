package generate

import "google.golang.org/genai"

func str() *genai.Schema  { return &genai.Schema{Type: genai.TypeString} }
func num() *genai.Schema  { return &genai.Schema{Type: genai.TypeNumber} }
func strs() *genai.Schema { return &genai.Schema{Type: genai.TypeArray, Items: str()} }

// ReportSchema is the structured output schema for JSON reports. Field names
// match what the response package decodes.
func ReportSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scopeOfWork": {
				Type:        genai.TypeObject,
				Description: "Narrative project scope, broken down by location.",
				Properties: map[string]*genai.Schema{
					"clientName":     str(),
					"projectAddress": str(),
					"claimNumber":    str(),
					"overallSummary": str(),
					"breakdown": {
						Type:        genai.TypeArray,
						Description: "Scope broken down by area.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"area":             str(),
								"demolitionTasks":  strs(),
								"restorationTasks": strs(),
							},
							Required: []string{"area"},
						},
					},
				},
			},
			"projectBudget": {
				Type:        genai.TypeObject,
				Description: "Consolidated RCV budget summary.",
				Properties: map[string]*genai.Schema{
					"budgetSourceInfo": str(),
					"lineItems": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"category":       str(),
								"description":    str(),
								"materialBudget": num(),
								"laborBudget":    num(),
								"totalBudget":    num(),
							},
						},
					},
					"subtotal":           num(),
					"salesTax":           num(),
					"totalProjectBudget": num(),
					"overheadAndProfit":  num(),
				},
			},
			"workOrders": {
				Type:        genai.TypeArray,
				Description: "Work orders for each trade.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"trade":        str(),
						"budget":       num(),
						"keyMaterials": str(),
						"instructions": strs(),
					},
					Required: []string{"trade"},
				},
			},
			"selectionSchedule": {
				Type:        genai.TypeObject,
				Description: "Customer selection and material allowance schedule.",
				Properties: map[string]*genai.Schema{
					"introductoryNote": str(),
					"items": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"item":                str(),
								"locations":           str(),
								"quantity":            str(),
								"allowancePerUnit":    num(),
								"totalMaterialBudget": num(),
							},
						},
					},
				},
			},
		},
	}
}

// PDFSchema wraps the generated PDF in a single base64 field.
func PDFSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pdfContent": {
				Type:        genai.TypeString,
				Description: "The base64 encoded string of the generated PDF file.",
			},
		},
		Required: []string{"pdfContent"},
	}
}
