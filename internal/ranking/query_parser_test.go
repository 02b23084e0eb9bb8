package ranking

import (
	"reflect"
	"testing"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantMain    string
		wantFilters models.QueryFilters
	}{
		{"plain text", "endpoint security", "endpoint security", models.QueryFilters{}},
		{"empty", "", "", models.QueryFilters{}},
		{"filter first", "category:Endpoint foo bar", "foo bar", models.QueryFilters{"category": "Endpoint"}},
		{"double quoted value", `tag:"data loss" dlp`, "dlp", models.QueryFilters{"tag": "data loss"}},
		{"single quoted value", `tag:'data loss' dlp`, "dlp", models.QueryFilters{"tag": "data loss"}},
		{"filter in the middle", "foo category:DLP bar", "foo bar", models.QueryFilters{"category": "DLP"}},
		{"filter at end", "dlp category:DLP", "dlp", models.QueryFilters{"category": "DLP"}},
		{"only filter", "category:DLP", "", models.QueryFilters{"category": "DLP"}},
		{"keys are lower-cased", "Category:DLP", "", models.QueryFilters{"category": "DLP"}},
		{"last occurrence wins", "tag:a tag:b x", "x", models.QueryFilters{"tag": "b"}},
		{"several filters", "category:DLP tag:cloud docs:yes", "", models.QueryFilters{"category": "DLP", "tag": "cloud", "docs": "yes"}},
		{"missing value stays", "docs: endpoint", "docs: endpoint", models.QueryFilters{}},
		{"trailing colon stays", "endpoint docs:", "endpoint docs:", models.QueryFilters{}},
		{"empty quotes stay", `tag:"" dlp`, `tag:"" dlp`, models.QueryFilters{}},
		{"url is captured", "see http://example.com", "see", models.QueryFilters{"http": "//example.com"}},
		{"surrounding space trimmed", "  dlp  ", "dlp", models.QueryFilters{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.raw)
			if got.MainQuery != tt.wantMain {
				t.Errorf("MainQuery = %q, want %q", got.MainQuery, tt.wantMain)
			}
			if !reflect.DeepEqual(got.Filters, tt.wantFilters) {
				t.Errorf("Filters = %v, want %v", got.Filters, tt.wantFilters)
			}
		})
	}
}
