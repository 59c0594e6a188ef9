package response

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAmount_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{`1234.5`, Dollars(1234.5)},
		{`0`, Dollars(0)},
		{`-20`, Dollars(-20)},
		{`"$1,234.50"`, Dollars(1234.5)},
		{`" 99 "`, Dollars(99)},
		{`"($50.00)"`, Dollars(-50)},
		{`null`, Amount{}},
		{`""`, Amount{}},
		{`"n/a"`, Amount{}},
		{`true`, Amount{}},
		{`{"v":1}`, Amount{}},
	}
	for _, tt := range tests {
		var got Amount
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}

func TestAmount_String(t *testing.T) {
	if got := (Amount{}).String(); got != "$0.00" {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := Dollars(12500).String(); got != "$12,500.00" {
		t.Errorf("expected %q, got %q", "$12,500.00", got)
	}
}

func TestAmount_MarshalRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: Dollars(1.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"a":1.5,"b":null}` {
		t.Errorf("expected %q, got %q", `{"a":1.5,"b":null}`, b)
	}
}

func TestText_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"Jane Doe"`, "Jane Doe"},
		{`42`, "42"},
		{`0`, ""},
		{`true`, "true"},
		{`false`, ""},
		{`null`, ""},
		{`["Kitchen","Bath"]`, "Kitchen, Bath"},
		{`{"x":1}`, ""},
	}
	for _, tt := range tests {
		var got Text
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestTextList_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want TextList
	}{
		{`["a","b"]`, TextList{"a", "b"}},
		{`["a",null,"  ",3]`, TextList{"a", "3"}},
		{`"single"`, TextList{"single"}},
		{`null`, nil},
		{`[]`, nil},
	}
	for _, tt := range tests {
		var got TextList
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDecodeEstimate_Truthiness(t *testing.T) {
	body := `{"scopeOfWork":null,"projectBudget":false,"workOrders":0,"selectionSchedule":""}`
	est, err := DecodeEstimate(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.HasSections() {
		t.Errorf("expected falsy sections to be absent, got %+v", est)
	}
}

func TestDecodeEstimate_MistypedFieldsArePartial(t *testing.T) {
	body := `{"scopeOfWork":{"clientName":"Jane","breakdown":"not a list","claimNumber":12345}}`
	est, err := DecodeEstimate(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sow := est.ScopeOfWork
	if sow == nil {
		t.Fatal("expected scope of work")
	}
	if sow.ClientName != "Jane" {
		t.Errorf("expected client %q, got %q", "Jane", sow.ClientName)
	}
	if sow.ClaimNumber != "12345" {
		t.Errorf("expected numeric claim number as text, got %q", sow.ClaimNumber)
	}
	if len(sow.Breakdown) != 0 {
		t.Errorf("expected mistyped breakdown to be skipped, got %d areas", len(sow.Breakdown))
	}
}

func TestDecodeEstimate_SectionOfWrongType(t *testing.T) {
	est, err := DecodeEstimate(`{"scopeOfWork":"see attached"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.ScopeOfWork == nil {
		t.Fatal("expected a present but empty scope of work")
	}
	if est.ScopeOfWork.ClientName != "" {
		t.Errorf("expected empty client, got %q", est.ScopeOfWork.ClientName)
	}
}

func TestDecodeEstimate_WorkOrdersSkipNonObjects(t *testing.T) {
	est, err := DecodeEstimate(`{"workOrders":["x",null,{"trade":"Drywall","budget":"$2,000"},7]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(est.WorkOrders) != 1 {
		t.Fatalf("expected 1 work order, got %d", len(est.WorkOrders))
	}
	wo := est.WorkOrders[0]
	if wo.Trade != "Drywall" || wo.Budget != Dollars(2000) {
		t.Errorf("unexpected work order %+v", wo)
	}
}

func TestDecodeEstimate_WorkOrdersNotArray(t *testing.T) {
	est, err := DecodeEstimate(`{"workOrders":{"trade":"Painting"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(est.WorkOrders) != 0 {
		t.Errorf("expected no work orders, got %d", len(est.WorkOrders))
	}
}

func TestDecodeEstimate_NonObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"text"`, `null`, `42`} {
		est, err := DecodeEstimate(body)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", body, err)
			continue
		}
		if est.HasSections() {
			t.Errorf("%s: expected no sections", body)
		}
	}
}

func TestDecodeEstimate_Malformed(t *testing.T) {
	for _, body := range []string{"{not valid", "", "Here is your report", `{"a":1`} {
		_, err := DecodeEstimate(body)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%q: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[]\n```":            `[]`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"text ```json x```":       "text ```json x```",
	}
	for in, want := range tests {
		if got := stripCodeBlock(in); got != want {
			t.Errorf("stripCodeBlock(%q): expected %q, got %q", in, want, got)
		}
	}
}
