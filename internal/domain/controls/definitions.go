package controls

// Control catalog for EU AI Act Articles 9-15 + Annex IV.

// KnownArticles lists every article a control may reference
var KnownArticles = []string{
	"Article 9",
	"Article 10",
	"Article 11",
	"Article 12",
	"Article 13",
	"Article 14",
	"Article 15",
	"Annex IV",
}

// Definitions is the static control set loaded into the registry at startup
var Definitions = []Control{
	// ===== Article 9: Risk management system =====
	{
		ID:              "CTRL-009-001",
		Article:         "Article 9",
		Title:           "Risk Identification Procedure",
		Description:     "Document and implement systematic risk identification procedures",
		Category:        CategoryDocumentation,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"docs/risk*", "RISK_MANAGEMENT*"},
		Severity:        SeverityHigh,
		References:      []string{"Article 9(2)(a)"},
	},
	{
		ID:              "CTRL-009-003",
		Article:         "Article 9",
		Title:           "Risk Mitigation Implementation",
		Description:     "Implement and test risk mitigation measures in code",
		Category:        CategoryCode,
		AutomationLevel: Automated,
		EvidenceSources: []string{"tests/test_*safety*", "tests/test_*risk*", "src/*mitigation*"},
		Severity:        SeverityCritical,
		References:      []string{"Article 9(2)(c)"},
	},
	{
		ID:              "CTRL-009-005",
		Article:         "Article 9",
		Title:           "Testing Procedures",
		Description:     "Comprehensive testing including risk scenarios",
		Category:        CategoryTest,
		AutomationLevel: Automated,
		EvidenceSources: []string{"tests/", "pytest.ini", "test_*"},
		Severity:        SeverityHigh,
		References:      []string{"Article 9(4)"},
	},

	// ===== Article 10: Data and data governance =====
	{
		ID:              "CTRL-010-001",
		Article:         "Article 10",
		Title:           "Training Data Documentation",
		Description:     "Document training data sources, collection, and characteristics",
		Category:        CategoryDocumentation,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"data/README.md", "DATA*.md", "data_card.md"},
		Severity:        SeverityHigh,
		References:      []string{"Article 10(2)"},
	},
	{
		ID:              "CTRL-010-002",
		Article:         "Article 10",
		Title:           "Dataset Quality Checks",
		Description:     "Automated sanity checks for completeness, duplicates, and PII",
		Category:        CategoryData,
		AutomationLevel: Automated,
		EvidenceSources: []string{"analyzer:dataset_sanity"},
		Severity:        SeverityHigh,
		References:      []string{"Article 10(3)"},
	},

	// ===== Article 11: Technical documentation =====
	{
		ID:              "CTRL-011-001",
		Article:         "Article 11",
		Title:           "Project Documentation Present",
		Description:     "A top-level README describing the system",
		Category:        CategoryDocumentation,
		AutomationLevel: Automated,
		EvidenceSources: []string{"README.md", "README.rst", "README"},
		Severity:        SeverityMedium,
		References:      []string{"Article 11(1)"},
	},
	{
		ID:              "CTRL-011-002",
		Article:         "Article 11",
		Title:           "Architecture Diagrams",
		Description:     "Diagrams of the system design and data flow",
		Category:        CategoryDocumentation,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"docs/*architecture*", "docs/*diagram*"},
		Severity:        SeverityMedium,
		References:      []string{"Article 11(1)", "Annex IV(2)"},
	},
	{
		ID:              "CTRL-011-005",
		Article:         "Article 11",
		Title:           "Change History",
		Description:     "A maintained changelog of system modifications",
		Category:        CategoryDocumentation,
		AutomationLevel: Automated,
		EvidenceSources: []string{"CHANGELOG.md", "CHANGELOG"},
		Severity:        SeverityLow,
		References:      []string{"Article 11(2)"},
	},
	{
		ID:              "CTRL-011-006",
		Article:         "Article 11",
		Title:           "Model Metadata Extraction",
		Description:     "Structural metadata of the serialized model (inputs, outputs, producer)",
		Category:        CategoryModel,
		AutomationLevel: Automated,
		EvidenceSources: []string{"analyzer:onnx_meta"},
		Severity:        SeverityHigh,
		References:      []string{"Article 11(1)", "Annex IV(1)"},
	},

	// ===== Article 12: Record keeping =====
	{
		ID:              "CTRL-012-001",
		Article:         "Article 12",
		Title:           "Logging Configuration",
		Description:     "Logging is configured for operational record keeping",
		Category:        CategoryConfig,
		AutomationLevel: Automated,
		EvidenceSources: []string{"logging.conf", "logging.yaml", "contains:import logging"},
		Severity:        SeverityHigh,
		References:      []string{"Article 12(1)"},
	},
	{
		ID:              "CTRL-012-002",
		Article:         "Article 12",
		Title:           "Audit Trail Implementation",
		Description:     "Code paths that record auditable events",
		Category:        CategoryCode,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"src/*audit*", "contains:audit"},
		Severity:        SeverityMedium,
		References:      []string{"Article 12(2)"},
	},

	// ===== Article 13: Transparency =====
	{
		ID:              "CTRL-013-001",
		Article:         "Article 13",
		Title:           "Instructions for Use",
		Description:     "Deployer-facing instructions covering capabilities and limitations",
		Category:        CategoryDocumentation,
		AutomationLevel: Manual,
		EvidenceSources: []string{"docs/usage*", "USAGE.md"},
		Severity:        SeverityMedium,
		References:      []string{"Article 13(2)"},
	},

	// ===== Article 14: Human oversight =====
	{
		ID:              "CTRL-014-001",
		Article:         "Article 14",
		Title:           "Human Oversight Measures",
		Description:     "Documented oversight and intervention mechanisms",
		Category:        CategoryDocumentation,
		AutomationLevel: Manual,
		EvidenceSources: []string{"docs/oversight*", "OVERSIGHT.md"},
		Severity:        SeverityHigh,
		References:      []string{"Article 14(3)"},
	},

	// ===== Article 15: Accuracy, robustness and cybersecurity =====
	{
		ID:              "CTRL-015-001",
		Article:         "Article 15",
		Title:           "Accuracy Metrics Reporting",
		Description:     "Declared accuracy metrics and evaluation results",
		Category:        CategoryDocumentation,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"docs/metrics*", "METRICS.md"},
		Severity:        SeverityHigh,
		References:      []string{"Article 15(2)"},
	},
	{
		ID:              "CTRL-015-003",
		Article:         "Article 15",
		Title:           "CI/CD Security Pipeline",
		Description:     "Automated pipeline configuration with security steps",
		Category:        CategoryCI,
		AutomationLevel: Automated,
		EvidenceSources: []string{".github/workflows/*", ".gitlab-ci.yml", ".circleci/config.yml"},
		Severity:        SeverityHigh,
		References:      []string{"Article 15(1)"},
	},
	{
		ID:              "CTRL-015-004",
		Article:         "Article 15",
		Title:           "Dependency Management",
		Description:     "Declared dependencies audited for known vulnerabilities",
		Category:        CategoryFile,
		AutomationLevel: Automated,
		EvidenceSources: []string{"requirements.txt", "package.json", "go.mod", "analyzer:deps"},
		Severity:        SeverityCritical,
		References:      []string{"Article 15(4)"},
	},
	{
		ID:              "CTRL-015-005",
		Article:         "Article 15",
		Title:           "Static Security Scanning",
		Description:     "Source code scanned for common security issues",
		Category:        CategoryCode,
		AutomationLevel: Automated,
		EvidenceSources: []string{"analyzer:bandit"},
		Severity:        SeverityCritical,
		References:      []string{"Article 15(4)"},
	},

	// ===== Annex IV: Technical documentation content =====
	{
		ID:              "CTRL-ANX4-001",
		Article:         "Annex IV",
		Title:           "General System Description",
		Description:     "Intended purpose, versions, and interactions with other systems",
		Category:        CategoryDocumentation,
		AutomationLevel: SemiAutomated,
		EvidenceSources: []string{"docs/system*", "docs/overview*", "README.md"},
		Severity:        SeverityMedium,
		References:      []string{"Annex IV(1)"},
	},
	{
		ID:              "CTRL-ANX4-003",
		Article:         "Annex IV",
		Title:           "Computational Requirements",
		Description:     "Declared runtime and build requirements",
		Category:        CategoryConfig,
		AutomationLevel: Automated,
		EvidenceSources: []string{"requirements.txt", "Dockerfile", "docker-compose.yml"},
		Severity:        SeverityLow,
		References:      []string{"Annex IV(1)(c)"},
	},
	{
		ID:              "CTRL-ANX4-005",
		Article:         "Annex IV",
		Title:           "Version Information",
		Description:     "Version identifiers for the released system",
		Category:        CategoryFile,
		AutomationLevel: Automated,
		EvidenceSources: []string{"VERSION", "version.txt", "CHANGELOG.md"},
		Severity:        SeverityLow,
		References:      []string{"Annex IV(1)(b)"},
	},
}

// DefaultRegistry builds the registry from the static definitions
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(Definitions, KnownArticles)
}
