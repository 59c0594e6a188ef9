package branding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand.yaml")
	yml := `company_name: Russell Construction
phone: "(555) 010-2000"
certifications:
  - IICRC Certified Firm
  - EPA Lead-Safe
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CompanyName != "Russell Construction" {
		t.Errorf("expected company %q, got %q", "Russell Construction", p.CompanyName)
	}
	if p.Phone != "(555) 010-2000" {
		t.Errorf("expected phone override, got %q", p.Phone)
	}
	if len(p.Certifications) != 2 {
		t.Errorf("expected 2 certifications, got %v", p.Certifications)
	}
	if p.TextColor != "#111111" {
		t.Errorf("expected default text color to survive, got %q", p.TextColor)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("company_name: [unclosed"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid yaml")
	}

	blank := filepath.Join(t.TempDir(), "blank.yaml")
	os.WriteFile(blank, []byte("company_name: \"\"\n"), 0o644)
	if _, err := Load(blank); err == nil {
		t.Error("expected error for blank company name")
	}
}
