package mapping

// defaultRuleCriteria returns the static rule-id to criterion-ids table.
// Rule ids follow the axe-core vocabulary plus the short aliases older
// scanner versions emit. A rule may map to several criteria.
func defaultRuleCriteria() map[string][]string {
	return map[string][]string{
		// Text alternatives
		"image-alt":       {"1.1.1"},
		"img-alt":         {"1.1.1"},
		"input-image-alt": {"1.1.1"},
		"area-alt":        {"1.1.1", "2.4.4"},
		"object-alt":      {"1.1.1"},
		"svg-img-alt":     {"1.1.1"},
		"role-img-alt":    {"1.1.1"},

		// Time-based media
		"video-caption":     {"1.2.2"},
		"audio-caption":     {"1.2.1"},
		"no-autoplay-audio": {"1.4.2"},

		// Structure and relationships
		"definition-list":            {"1.3.1"},
		"dlitem":                     {"1.3.1"},
		"list":                       {"1.3.1"},
		"listitem":                   {"1.3.1"},
		"td-headers-attr":            {"1.3.1"},
		"th-has-data-cells":          {"1.3.1"},
		"table-fake-caption":         {"1.3.1"},
		"label":                      {"1.3.1", "4.1.2"},
		"form-field-multiple-labels": {"1.3.1", "3.3.2"},
		"autocomplete-valid":         {"1.3.5"},

		// Color and contrast
		"color-contrast":          {"1.4.3"},
		"color-contrast-enhanced": {"1.4.3"},
		"link-in-text-block":      {"1.4.1"},
		"non-text-contrast":       {"1.4.11"},
		"avoid-inline-spacing":    {"1.4.12"},
		"meta-viewport":           {"1.4.4"},
		"meta-viewport-large":     {"1.4.4"},

		// Keyboard
		"accesskeys":                  {"2.1.1"},
		"focusable-content":           {"2.1.1"},
		"no-keyboard-trap":            {"2.1.2"},
		"scrollable-region-focusable": {"2.1.1"},

		// Timing and motion
		"blink":        {"2.2.2"},
		"marquee":      {"2.2.2"},
		"meta-refresh": {"2.2.1", "3.2.5"},

		// Navigation
		"bypass":         {"2.4.1"},
		"skip-link":      {"2.4.1"},
		"document-title": {"2.4.2"},
		"tabindex":       {"2.4.3"},
		"link-name":      {"2.4.4", "4.1.2"},
		"empty-heading":  {"2.4.6"},
		"heading-order":  {"2.4.6"},
		"focus-visible":  {"2.4.7"},
		"frame-title":    {"2.4.1", "4.1.2"},

		// Input modalities
		"target-size":                 {"2.5.5"},
		"label-content-name-mismatch": {"2.5.3"},

		// Language
		"html-has-lang":          {"3.1.1"},
		"html-lang-valid":        {"3.1.1"},
		"html-xml-lang-mismatch": {"3.1.1"},
		"valid-lang":             {"3.1.2"},

		// Input assistance
		"aria-input-field-name": {"3.3.2", "4.1.2"},
		"select-name":           {"3.3.2", "4.1.2"},
		"input-button-name":     {"3.3.2", "4.1.2"},

		// Parsing and ARIA
		"duplicate-id":           {"4.1.1"},
		"duplicate-id-active":    {"4.1.1"},
		"duplicate-id-aria":      {"4.1.1"},
		"aria-allowed-attr":      {"4.1.2"},
		"aria-required-attr":     {"4.1.2"},
		"aria-required-children": {"1.3.1"},
		"aria-required-parent":   {"1.3.1"},
		"aria-roles":             {"4.1.2"},
		"aria-valid-attr":        {"4.1.2"},
		"aria-valid-attr-value":  {"4.1.2"},
		"aria-hidden-body":       {"4.1.2"},
		"aria-hidden-focus":      {"4.1.2"},
		"button-name":            {"4.1.2"},
		"nested-interactive":     {"4.1.2"},
		"status-messages":        {"4.1.3"},
	}
}
