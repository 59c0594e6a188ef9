package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/russellconstruction9/RRsolutions/internal/currency"
)

// Estimate is the JSON response contract. Every section is optional.
type Estimate struct {
	ScopeOfWork       *ScopeOfWork       `json:"scopeOfWork,omitempty"`
	ProjectBudget     *ProjectBudget     `json:"projectBudget,omitempty"`
	WorkOrders        []WorkOrder        `json:"workOrders,omitempty"`
	SelectionSchedule *SelectionSchedule `json:"selectionSchedule,omitempty"`

	// Raw is the response after fence stripping, kept for the fallback dump.
	Raw json.RawMessage `json:"-"`
}

// HasSections reports whether any section was present.
func (e *Estimate) HasSections() bool {
	return e.ScopeOfWork != nil || e.ProjectBudget != nil || len(e.WorkOrders) > 0 || e.SelectionSchedule != nil
}

type ScopeOfWork struct {
	ClientName     Text   `json:"clientName"`
	ProjectAddress Text   `json:"projectAddress"`
	ClaimNumber    Text   `json:"claimNumber"`
	OverallSummary Text   `json:"overallSummary"`
	Breakdown      []Area `json:"breakdown"`
}

type Area struct {
	Area             Text     `json:"area"`
	DemolitionTasks  TextList `json:"demolitionTasks"`
	RestorationTasks TextList `json:"restorationTasks"`
}

type ProjectBudget struct {
	BudgetSourceInfo   Text       `json:"budgetSourceInfo"`
	LineItems          []LineItem `json:"lineItems"`
	Subtotal           Amount     `json:"subtotal"`
	SalesTax           Amount     `json:"salesTax"`
	OverheadAndProfit  Amount     `json:"overheadAndProfit"`
	TotalProjectBudget Amount     `json:"totalProjectBudget"`
}

type LineItem struct {
	Category       Text   `json:"category"`
	Description    Text   `json:"description"`
	MaterialBudget Amount `json:"materialBudget"`
	LaborBudget    Amount `json:"laborBudget"`
	TotalBudget    Amount `json:"totalBudget"`
}

type WorkOrder struct {
	Trade        Text     `json:"trade"`
	Budget       Amount   `json:"budget"`
	KeyMaterials Text     `json:"keyMaterials"`
	Instructions TextList `json:"instructions"`
}

type SelectionSchedule struct {
	IntroductoryNote Text            `json:"introductoryNote"`
	Items            []SelectionItem `json:"items"`
}

type SelectionItem struct {
	Item                Text   `json:"item"`
	Locations           Text   `json:"locations"`
	Quantity            Text   `json:"quantity"`
	AllowancePerUnit    Amount `json:"allowancePerUnit"`
	TotalMaterialBudget Amount `json:"totalMaterialBudget"`
}

// DecodeEstimate parses a JSON-mode response. Only invalid JSON is an error;
// missing or mistyped fields decode as absent. Valid JSON that is not an
// object yields an Estimate without sections.
func DecodeEstimate(body string) (*Estimate, error) {
	text := stripCodeBlock(body)
	data := []byte(text)
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(text, 200))
	}

	est := &Estimate{Raw: json.RawMessage(data)}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return est, nil
	}

	if raw := top["scopeOfWork"]; present(raw) {
		est.ScopeOfWork = decodeSection[ScopeOfWork](raw)
	}
	if raw := top["projectBudget"]; present(raw) {
		est.ProjectBudget = decodeSection[ProjectBudget](raw)
	}
	if raw := top["workOrders"]; present(raw) {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err == nil {
			for _, e := range entries {
				if !isObject(e) {
					continue
				}
				est.WorkOrders = append(est.WorkOrders, *decodeSection[WorkOrder](e))
			}
		}
	}
	if raw := top["selectionSchedule"]; present(raw) {
		est.SelectionSchedule = decodeSection[SelectionSchedule](raw)
	}
	return est, nil
}

// decodeSection decodes what it can of raw into a T. encoding/json skips
// fields with mismatched types and keeps going, so the error only reports
// the first skipped field and is dropped.
func decodeSection[T any](raw json.RawMessage) *T {
	var v T
	_ = json.Unmarshal(raw, &v)
	return &v
}

// present mirrors a truthiness check on the raw value: null, false, "" and
// numeric zero count as absent.
func present(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	switch string(s) {
	case "", "null", "false", `""`:
		return false
	}
	if c := s[0]; c == '-' || (c >= '0' && c <= '9') {
		if f, err := strconv.ParseFloat(string(s), 64); err == nil && f == 0 {
			return false
		}
	}
	return true
}

func isObject(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) > 0 && s[0] == '{'
}

// Amount is a dollar value that may be absent. Numbers and numeric strings
// such as "$1,234.50" decode as valid. null and anything unparseable decode
// as absent.
type Amount struct {
	Value float64
	Valid bool
}

// Dollars returns a valid Amount.
func Dollars(v float64) Amount { return Amount{Value: v, Valid: true} }

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		return nil
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return nil
		}
		if v, ok := parseDollars(str); ok {
			*a = Amount{Value: v, Valid: true}
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := strconv.ParseFloat(string(s), 64); err == nil {
			*a = Amount{Value: v, Valid: true}
		}
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// Ptr returns nil for an absent amount.
func (a Amount) Ptr() *float64 {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// String renders the amount as currency, or the placeholder when absent.
func (a Amount) String() string {
	return currency.FormatOptional(a.Ptr())
}

func parseDollars(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// Text is a string field that also accepts numbers and booleans. Falsy
// values (null, false, 0, "") decode as empty. Arrays are joined with ", ".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(scalarText(data))
	if *t != "" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		var parts []string
		for _, it := range items {
			if s := scalarText(it); s != "" {
				parts = append(parts, s)
			}
		}
		*t = Text(strings.Join(parts, ", "))
	}
	return nil
}

// Or returns t, or fallback when t is blank.
func (t Text) Or(fallback string) string {
	if strings.TrimSpace(string(t)) == "" {
		return fallback
	}
	return string(t)
}

// TextList is a list of strings that also accepts a single string.
// Blank entries are dropped.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	*l = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		if s := scalarText(data); strings.TrimSpace(s) != "" {
			*l = TextList{s}
		}
		return nil
	}
	for _, it := range items {
		if s := scalarText(it); strings.TrimSpace(s) != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

func scalarText(data []byte) string {
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		return ""
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return ""
		}
		return str
	case 't':
		if string(s) == "true" {
			return "true"
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if f, err := strconv.ParseFloat(string(s), 64); err == nil && f != 0 {
			return string(s)
		}
	}
	return ""
}
