// Package branding holds the company details printed on exported documents.
package branding

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the company identity used when rendering branded PDFs.
type Profile struct {
	CompanyName    string   `yaml:"company_name" json:"company_name"`
	Address        string   `yaml:"address" json:"address"`
	Phone          string   `yaml:"phone" json:"phone"`
	Email          string   `yaml:"email" json:"email"`
	Website        string   `yaml:"website" json:"website"`
	Certifications []string `yaml:"certifications" json:"certifications"`

	Font         string `yaml:"font" json:"font"`
	PrimaryColor string `yaml:"primary_color" json:"primary_color"`
	TextColor    string `yaml:"text_color" json:"text_color"`
}

// Default returns the built-in Lake City Restoration profile.
func Default() Profile {
	return Profile{
		CompanyName:    "Lake City Restoration",
		Address:        "306 Argonne Rd, Warsaw, IN 46580",
		Phone:          "(574) 385-9111",
		Email:          "911@lcrestore.com",
		Website:        "https://www.lcrestore.com",
		Certifications: []string{"IICRC Certified Firm"},
		Font:           "Arial, Helvetica, sans-serif",
		PrimaryColor:   "a professional, print-safe deep red",
		TextColor:      "#111111",
	}
}

// Load reads a YAML profile. Fields left out of the file keep their
// defaults. An empty path returns Default.
func Load(path string) (Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read branding file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse branding file %s: %w", path, err)
	}
	if strings.TrimSpace(p.CompanyName) == "" {
		return p, fmt.Errorf("branding file %s: company_name is required", path)
	}
	return p, nil
}
