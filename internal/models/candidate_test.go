package models

import (
	"errors"
	"testing"
)

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Candidate
		wantErr bool
	}{
		{"valid product", Candidate{ID: "7", Title: "Carbon Black App Control", Type: TypeProduct, URL: "/products/7"}, false},
		{"missing id", Candidate{Title: "x", Type: TypeProduct, URL: "/x"}, true},
		{"missing title", Candidate{ID: "1", Type: TypeProduct, URL: "/x"}, true},
		{"missing url", Candidate{ID: "1", Title: "x", Type: TypeFeature}, true},
		{"unknown type", Candidate{ID: "1", Title: "x", Type: "widget", URL: "/x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCandidate) {
				t.Errorf("error should wrap ErrInvalidCandidate: %v", err)
			}
		})
	}
}

func TestCandidate_KeyAndClone(t *testing.T) {
	c := Candidate{ID: "doc-1", Type: TypeDocumentation, Tags: []string{"guide"}}
	if c.Key() != "documentation/doc-1" {
		t.Errorf("Key() = %s", c.Key())
	}
	cp := c.Clone()
	cp.Tags[0] = "changed"
	if c.Tags[0] != "guide" {
		t.Error("Clone should not share the tags slice")
	}
}

func TestCandidate_Summary(t *testing.T) {
	c := Candidate{ID: "30", Title: "Endpoint DLP", Type: TypeProduct}
	s := c.Summary(2)
	if s.ID != "30" || s.Title != "Endpoint DLP" || s.Type != "product" || s.Position != 2 {
		t.Errorf("Summary() = %+v", s)
	}
}
