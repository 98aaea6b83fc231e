package classify

import (
	"regexp"

	"github.com/starsandeep/sfsync/pkg/models"
)

// Rule pairs a PII category with the field-name pattern that selects it.
type Rule struct {
	Category models.PIICategory
	Pattern  *regexp.Regexp
}

// Classification is the result of PII classification. The zero value means not PII.
type Classification struct {
	Category models.PIICategory `json:"category,omitempty"`
}

// IsPII reports whether a category was assigned.
func (c Classification) IsPII() bool {
	return c.Category != models.PIICategoryNone
}

// NotPII is the classification of a field no rule matches.
var NotPII = Classification{}

func rule(category models.PIICategory, pattern string) Rule {
	return Rule{Category: category, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// piiRules is evaluated in order; the first match wins.
var piiRules = []Rule{
	rule(models.PIICategoryName, `(first|last|middle|full|given|family|maiden|nick|contact|person)_?name|^name$`),
	rule(models.PIICategoryEmail, `e_?mail`),
	rule(models.PIICategoryPhone, `phone|mobile|fax`),
	rule(models.PIICategoryAddress, `address|street|(^|_)city|postal_?code|zip_?code|(^|_)zip|mailing|shipping|billing`),
	rule(models.PIICategoryNationalID, `(^|_)ssn(__c)?$|social_?security|passport|national_?id|tax_?id|driver_?s?_?licen[cs]e`),
	rule(models.PIICategoryBirthAge, `birth|^dob$|(^|_)age(__c)?$`),
	rule(models.PIICategoryFinancial, `credit_?card|card_?number|cvv|iban|bank_?account|account_?number|routing_?number|salary|income`),
	rule(models.PIICategoryHealth, `health|medical|diagnos|allerg|blood_?type|prescription|patient`),
	rule(models.PIICategoryDemographic, `gender|(^|_)sex(__c)?$|(^|_)race(__c)?$|ethnic|religio|marital|sexual_?orientation|political|nationality|preferred_?language`),
}

// Rules returns a copy of the PII rule table in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), piiRules...)
}

// ClassifyPII runs the field name through the rule table.
func ClassifyPII(fieldName string) Classification {
	return Match(piiRules, fieldName)
}

// Match returns the classification of the first rule whose pattern matches.
func Match(rules []Rule, fieldName string) Classification {
	for _, r := range rules {
		if r.Pattern.MatchString(fieldName) {
			return Classification{Category: r.Category}
		}
	}
	return NotPII
}

// IsPII reports whether any PII rule matches the field name.
func IsPII(fieldName string) bool {
	return ClassifyPII(fieldName).IsPII()
}
