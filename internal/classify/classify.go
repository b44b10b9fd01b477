package classify

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one destination activity type a time entry can be booked on.
type Category struct {
	Key  string
	ID   string
	Name string
}

const (
	KeyInternalOperations      = "internal_operations"
	KeyBug                     = "bug"
	KeyFeature                 = "feature"
	KeyCustomerIssues          = "customer_issues"
	KeyProfessionalDevelopment = "professional_development"
)

var (
	InternalOperations = Category{
		Key:  KeyInternalOperations,
		ID:   "bc23a96d-f6c5-44fe-be60-337af432d71b",
		Name: "Internal Operations",
	}
	Bug = Category{
		Key:  KeyBug,
		ID:   "140dc2a9-03a0-4431-9f6b-0120f2c1b82f",
		Name: "Bug",
	}
	Feature = Category{
		Key:  KeyFeature,
		ID:   "9cd0cb39-180d-4b19-9265-83f9753ff76c",
		Name: "Feature",
	}
	CustomerIssues = Category{
		Key:  KeyCustomerIssues,
		ID:   "6a79b89e-4c6d-4866-b07b-428b65f1b1d5",
		Name: "Customer Issues",
	}
	ProfessionalDevelopment = Category{
		Key:  KeyProfessionalDevelopment,
		ID:   "2a032e88-7d97-44d3-b28e-ce89b4277017",
		Name: "Professional Development",
	}
)

// Categories lists every category, default first.
func Categories() []Category {
	return []Category{InternalOperations, Bug, Feature, CustomerIssues, ProfessionalDevelopment}
}

// Rule maps a set of keywords to a category. A rule matches when any keyword
// is a substring of the folded description.
type Rule struct {
	Category Category
	Keywords []string
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
var DefaultRules = []Rule{
	{Category: Bug, Keywords: []string{"technical debt", "bug"}},
	{Category: Feature, Keywords: []string{"feature", "user story", "pr"}},
	{Category: CustomerIssues, Keywords: []string{"swattask", "swat"}},
	{Category: ProfessionalDevelopment, Keywords: []string{"professional development", "formation"}},
}

type Classifier struct {
	rules    []Rule
	fallback Category
	fold     cases.Caser
}

// NewClassifier builds a classifier over DefaultRules. ids overrides the
// destination id per category key; empty or unknown entries are ignored.
func NewClassifier(ids map[string]string) *Classifier {
	rules := make([]Rule, 0, len(DefaultRules))
	for _, rule := range DefaultRules {
		rules = append(rules, Rule{
			Category: withID(rule.Category, ids),
			Keywords: rule.Keywords,
		})
	}
	return &Classifier{
		rules:    rules,
		fallback: withID(InternalOperations, ids),
		fold:     cases.Lower(language.Und),
	}
}

// Classify returns the category of the first rule matching description, or
// the default category when nothing matches.
func (c *Classifier) Classify(description string) Category {
	text := c.fold.String(description)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}
	return c.fallback
}

// Categories returns the classifier's categories with overridden ids applied.
func (c *Classifier) Categories() []Category {
	out := []Category{c.fallback}
	for _, rule := range c.rules {
		out = append(out, rule.Category)
	}
	return out
}

// ExtractWorkItemID returns the first whitespace-delimited token made only of
// digits. A leading "#" or opening bracket and trailing punctuation ("1234:")
// are ignored; a sign is not, so "-5" is no work item.
func ExtractWorkItemID(description string) (int64, bool) {
	for _, token := range strings.Fields(description) {
		token = strings.TrimLeft(token, "#([{")
		token = strings.TrimRightFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if !isASCIIDigits(token) {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}

func isASCIIDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func withID(category Category, ids map[string]string) Category {
	if id := strings.TrimSpace(ids[category.Key]); id != "" {
		category.ID = id
	}
	return category
}
