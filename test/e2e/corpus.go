// Package e2e provides end-to-end tests over a generated product portfolio.
package e2e

import (
	"fmt"
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// QueryTestCase defines a query and the candidate key(s) of which at least one
// must appear among the top results.
type QueryTestCase struct {
	Query        string
	ExpectedKeys []string
	Description  string
}

// Corpus holds catalog candidates and query test cases for E2E tests.
type Corpus struct {
	Candidates   []models.Candidate
	Categories   []string
	Tags         []string
	TestCases    []QueryTestCase
	TotalQueries int
}

type productLine struct {
	title       string
	category    string
	description string
	tags        []string
}

var productLines = []productLine{
	{"Email Security.cloud", "Messaging", "Cloud email gateway that blocks phishing and malware", []string{"email", "phishing"}},
	{"Messaging Gateway", "Messaging", "On-premises mail transfer agent with antispam filtering", []string{"smtp", "antispam"}},
	{"Web Isolation", "Proxy", "Remote browser isolation for risky and uncategorized websites", []string{"browser", "isolation"}},
	{"Edge SWG", "Proxy", "Secure web gateway appliance with SSL inspection", []string{"web", "ssl"}},
	{"Cloud Workload Protection", "Endpoint", "Hardening and anti-malware for cloud servers and containers", []string{"containers", "servers"}},
	{"Data Center Security", "Endpoint", "Server lockdown with application whitelisting", []string{"whitelisting", "servers"}},
	{"Network Forensics", "Network", "Full packet capture and replay for incident response", []string{"packets", "forensics"}},
	{"Content Analysis", "Network", "Sandboxing and file reputation for downloaded content", []string{"sandbox", "reputation"}},
	{"Identity Governance", "Identity", "Access certification and role lifecycle management", []string{"roles", "certification"}},
	{"Privileged Access Manager", "Identity", "Credential vaulting and session recording for administrators", []string{"vault", "sessions"}},
	{"VIP Authentication", "Identity", "Multi-factor authentication with push and OTP", []string{"mfa", "otp"}},
	{"Carbon Black EDR", "Carbon Black", "Threat hunting with continuous endpoint recording", []string{"hunting", "edr"}},
	{"Carbon Black Cloud Workload", "Carbon Black", "Vulnerability assessment for vSphere workloads", []string{"vsphere", "vulnerability"}},
	{"Network DLP", "DLP", "Monitor and block sensitive data leaving over the network", []string{"data", "monitoring"}},
	{"Cloud DLP", "DLP", "Data loss prevention for sanctioned cloud applications", []string{"data", "saas"}},
	{"Encryption Management Server", "Encryption", "Central key management for desktop and email encryption", []string{"keys", "pgp"}},
	{"Endpoint Encryption", "Encryption", "Full disk encryption with pre-boot authentication", []string{"disk", "preboot"}},
	{"Secure Access Cloud", "Proxy", "Zero trust network access to private applications", []string{"ztna", "zerotrust"}},
}

// BuildCorpus returns a catalog of product lines with their category records,
// one documentation page and one feature per product, and query test cases
// covering exact titles, typos, tags, filters and sort modes.
func BuildCorpus() *Corpus {
	var cands []models.Candidate
	categorySeen := make(map[string]bool)
	var categories []string
	tagSeen := make(map[string]bool)
	var tags []string

	for i, p := range productLines {
		id := fmt.Sprintf("%d", 100+i)
		cands = append(cands, models.Candidate{
			ID:             id,
			Title:          p.title,
			Description:    p.description,
			Type:           models.TypeProduct,
			Category:       p.category,
			Tags:           p.tags,
			RelevanceScore: 0.9 - float64(i)*0.01,
			URL:            "/products/" + id,
		})
		if !categorySeen[p.category] {
			categorySeen[p.category] = true
			categories = append(categories, p.category)
		}
		for _, t := range p.tags {
			if !tagSeen[t] {
				tagSeen[t] = true
				tags = append(tags, t)
			}
		}
	}
	for _, name := range categories {
		cands = append(cands, catalog.CategoryCandidate(name))
	}
	for i, p := range productLines {
		slug := strings.ToLower(strings.ReplaceAll(p.title, " ", "-"))
		cands = append(cands,
			models.Candidate{
				ID:             fmt.Sprintf("doc-%d", 100+i),
				Title:          "Deploying " + p.title,
				Description:    "Installation and sizing guide for " + p.title,
				Type:           models.TypeDocumentation,
				Category:       p.category,
				Tags:           []string{"guide"},
				RelevanceScore: 0.5,
				URL:            "/docs/" + slug,
			},
			models.Candidate{
				ID:             fmt.Sprintf("feature-%d", 100+i),
				Title:          p.title + " Reporting",
				Description:    "Scheduled compliance reports for " + p.title,
				Type:           models.TypeFeature,
				Category:       p.category,
				Tags:           []string{"reports"},
				RelevanceScore: 0.4,
				URL:            "/features/" + slug + "-reporting",
			},
		)
	}

	cases := buildQueryTestCases()
	return &Corpus{
		Candidates:   cands,
		Categories:   categories,
		Tags:         tags,
		TestCases:    cases,
		TotalQueries: len(cases),
	}
}

func productKey(i int) string {
	return models.CandidateKey(models.TypeProduct, fmt.Sprintf("%d", 100+i))
}

func buildQueryTestCases() []QueryTestCase {
	var cases []QueryTestCase
	for i, p := range productLines {
		cases = append(cases, QueryTestCase{
			Query:        p.title,
			ExpectedKeys: []string{productKey(i)},
			Description:  "exact title " + p.title,
		})
	}
	cases = append(cases,
		QueryTestCase{"isolaton", []string{productKey(2)}, "typo in title word"},
		QueryTestCase{"forensic", []string{productKey(6)}, "partial title word"},
		QueryTestCase{"phishing", []string{productKey(0)}, "tag match"},
		QueryTestCase{"ztna", []string{productKey(17)}, "tag only match"},
		QueryTestCase{"whitelisting", []string{productKey(5)}, "description word"},
		QueryTestCase{"data category:DLP", []string{productKey(13), productKey(14)}, "category filter"},
		QueryTestCase{"tag:otp", []string{productKey(10)}, "tag filter without main query"},
		QueryTestCase{"vault type:product", []string{productKey(9)}, "type filter"},
		QueryTestCase{"deploying edr docs:yes", []string{"documentation/doc-111"}, "docs filter adds documentation"},
		QueryTestCase{"reporting feature:encryption", []string{"feature/feature-116", "feature/feature-115"}, "feature filter"},
		QueryTestCase{"category:Identity", []string{models.CandidateKey(models.TypeCategory, catalog.CategorySlug("Identity"))}, "category record"},
	)
	return cases
}
