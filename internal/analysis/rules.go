package analysis

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// RuleSet holds the compiled watch-list patterns for one rules revision.
// Tier patterns flag vocabulary by severity; the exclusion pattern skips
// comments that discuss software/education topics and were producing false
// positives; the educational pattern feeds the quality and relevance
// metrics.
type RuleSet struct {
	Version     string
	tiers       map[model.TermTier]*regexp.Regexp
	exclusion   *regexp.Regexp
	educational *regexp.Regexp
}

// ruleFile is the YAML shape of an external rule-set file.
type ruleFile struct {
	Version     string              `yaml:"version"`
	Tiers       map[string][]string `yaml:"tiers"`
	Exclusion   []string            `yaml:"exclusion"`
	Educational []string            `yaml:"educational"`
}

// Built-in term lists. Kept as data so an external rules file can replace
// them without touching detection logic.
var (
	defaultSevereTerms = []string{
		`\bporn\b`, `\bxxx\b`, `obscene`, `x-rated`, `\bmasturbat`,
		`kill yourself`, `suicide instruction`, `racial slur`, `antisemit`,
		`\bgore\b`, `हिंदी पोर्न`, `सेक्सी`, `चुदाई`,
		`\bbhojpuri hot\b`,
	}
	defaultModerateTerms = []string{
		`\bexplicit adult\b`, `\bnude\b`, `\bnaked\b`, `\berotic\b`,
		`\bslut\b`, `\bwhore\b`, `\bself harm\b`, `\bseductive\b`,
		`\bstriptease\b`, `\bhookup\b`, `\bkinky\b`, `\bsexual\b`,
		`\bundress\b`, `\bforeplay\b`, `\bintimate scene\b`, `\bvulgar\b`,
	}
	defaultMildTerms = []string{
		`\badult content\b`, `\b18\+`, `\bnsfw\b`, `\bswearing\b`,
		`\bcrude humor\b`,
	}
	defaultExclusionTerms = []string{
		`\bcoding\b`, `\bprogramming\b`, `\btutorial\b`, `\btech\b`,
		`\blearning\b`, `\beducational\b`, `\bjavascript\b`, `\bhtml\b`,
		`\bcss\b`, `\bweb dev\b`, `\bsoftware\b`, `\breact\b`, `\bangular\b`,
		`\bnode\b`, `\bpython\b`, `music`, `label`, `official`, `channel`,
	}
	defaultEducationalTerms = []string{
		`learn`, `educational`, `informative`, `taught`, `study`,
		`knowledge`, `science`, `math`, `physics`, `chemistry`, `biology`,
		`history`, `literature`, `academic`, `research`, `professor`,
		`teacher`, `lecture`, `curriculum`, `education`, `university`,
		`college`, `school`, `classroom`, `student`, `scholar`, `teaching`,
		`tutor`, `lesson`, `course`, `workshop`, `training`, `expert`,
		`phd`, `degree`, `geek`, `coding`, `programming`, `development`,
		`software`, `engineering`, `algorithm`, `database`, `computer`,
		`analytics`, `artificial intelligence`, `machine learning`,
		`data science`, `cybersecurity`, `networking`, `framework`,
		`methodology`, `innovation`, `technical`, `technology`,
	}
)

// DefaultRules returns the built-in rule set.
func DefaultRules() *RuleSet {
	rs, err := compileRules(ruleFile{
		Version: "builtin",
		Tiers: map[string][]string{
			string(model.TierSevere):   defaultSevereTerms,
			string(model.TierModerate): defaultModerateTerms,
			string(model.TierMild):     defaultMildTerms,
		},
		Exclusion:   defaultExclusionTerms,
		Educational: defaultEducationalTerms,
	})
	if err != nil {
		// The built-in patterns are fixed at compile time.
		panic(fmt.Sprintf("analysis: built-in rules invalid: %v", err))
	}
	return rs
}

// LoadRules reads a YAML rule-set file. An empty path returns the built-in
// set.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	for _, tier := range []model.TermTier{model.TierSevere, model.TierModerate, model.TierMild} {
		if len(rf.Tiers[string(tier)]) == 0 {
			return nil, fmt.Errorf("rules file %s: missing %s tier", path, tier)
		}
	}

	rs, err := compileRules(rf)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

func compileRules(rf ruleFile) (*RuleSet, error) {
	tiers := make(map[model.TermTier]*regexp.Regexp, len(rf.Tiers))
	for name, terms := range rf.Tiers {
		re, err := compileAlternation(terms)
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", name, err)
		}
		tiers[model.TermTier(name)] = re
	}

	exclusion, err := compileAlternation(rf.Exclusion)
	if err != nil {
		return nil, fmt.Errorf("exclusion: %w", err)
	}
	educational, err := compileAlternation(rf.Educational)
	if err != nil {
		return nil, fmt.Errorf("educational: %w", err)
	}

	return &RuleSet{
		Version:     rf.Version,
		tiers:       tiers,
		exclusion:   exclusion,
		educational: educational,
	}, nil
}

// compileAlternation joins term patterns into one case-insensitive
// alternation. Each term is already a regex fragment.
func compileAlternation(terms []string) (*regexp.Regexp, error) {
	if len(terms) == 0 {
		return regexp.MustCompile(`\b\B`), nil // matches nothing
	}
	return regexp.Compile(`(?i)(` + strings.Join(terms, "|") + `)`)
}
