package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Heuristics holds every keyword table, phrase list, and scoring constant
// used by the query analyzer and the confidence scorer. They are loaded
// data, not compiled-in constants, so deployments can tune them without
// touching the decision logic. All values ship with working defaults; an
// optional YAML file overrides individual keys.
type Heuristics struct {
	DomainKeywords map[string][]string `mapstructure:"domainKeywords"`

	// Domains checked before the general fallback, most specific first.
	// A tie on match density resolves in this order.
	DomainPriority []string `mapstructure:"domainPriority"`

	ReasoningVerbs     []string `mapstructure:"reasoningVerbs"`
	ExplanatoryVerbs   []string `mapstructure:"explanatoryVerbs"`
	ConjunctionMarkers []string `mapstructure:"conjunctionMarkers"`

	UncertaintyPhrases   []string `mapstructure:"uncertaintyPhrases"`
	HallucinationPhrases []string `mapstructure:"hallucinationPhrases"`
	ConfidencePhrases    []string `mapstructure:"confidencePhrases"`

	Weights    ScoreWeights    `mapstructure:"weights"`
	Thresholds ScoreThresholds `mapstructure:"thresholds"`
}

// ScoreWeights controls how the three component scores combine into the
// overall confidence, per route.
type ScoreWeights struct {
	LocalCitation float64 `mapstructure:"localCitation"`
	LocalResponse float64 `mapstructure:"localResponse"`
	LocalContext  float64 `mapstructure:"localContext"`

	CloudCitation float64 `mapstructure:"cloudCitation"`
	CloudResponse float64 `mapstructure:"cloudResponse"`
	CloudContext  float64 `mapstructure:"cloudContext"`

	BalancedCitation float64 `mapstructure:"balancedCitation"`
	BalancedResponse float64 `mapstructure:"balancedResponse"`
	BalancedContext  float64 `mapstructure:"balancedContext"`
}

// ScoreThresholds holds the empirically chosen cutoffs. None of them have a
// documented derivation; they are tuning knobs, not derived quantities.
type ScoreThresholds struct {
	// Overall confidence below this marks a local answer for escalation
	Escalation float64 `mapstructure:"escalation"`

	// Word-overlap ratio above which a context chunk counts as relevant
	ChunkOverlap float64 `mapstructure:"chunkOverlap"`

	// Average overlap needed (with >=2 relevant chunks) for sufficient context
	SufficientOverlap float64 `mapstructure:"sufficientOverlap"`

	// Query/answer content-word overlap below this fails the relevance check
	AnswerOverlap float64 `mapstructure:"answerOverlap"`

	// Minimum answer length in characters for the completeness check
	MinAnswerChars int `mapstructure:"minAnswerChars"`

	// Domain keyword density above this classifies a query as Specialized
	SpecializedJargon float64 `mapstructure:"specializedJargon"`

	// Minimum keyword density for a domain match; below it the query is General
	DomainMinDensity float64 `mapstructure:"domainMinDensity"`
}

// LoadHeuristics returns the built-in tables, overridden by the YAML file at
// path when path is non-empty.
func LoadHeuristics(path string) (*Heuristics, error) {
	v := viper.New()
	setHeuristicDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading heuristics file %s: %w", path, err)
		}
		slog.Info("heuristics overrides loaded", "file", path)
	}

	var h Heuristics
	if err := v.Unmarshal(&h); err != nil {
		return nil, fmt.Errorf("unmarshaling heuristics: %w", err)
	}
	return &h, nil
}

func setHeuristicDefaults(v *viper.Viper) {
	v.SetDefault("domainKeywords", map[string][]string{
		"financial": {
			"loan", "mortgage", "investment", "portfolio", "risk", "compliance",
			"financial", "banking", "credit", "debt", "fico", "basel",
			"securities", "fund", "trading", "revenue", "liability insurance",
		},
		"legal": {
			"contract", "agreement", "liability", "clause", "jurisdiction",
			"lawsuit", "legal", "court", "attorney", "law", "litigation",
			"statute", "regulation", "breach", "defendant", "indemnity",
		},
		"medical": {
			"patient", "diagnosis", "treatment", "medication", "symptoms",
			"medical", "health", "doctor", "hospital", "clinical", "therapy",
			"prescription", "vital", "cardiac", "ecg", "oxygen", "dosage",
		},
		"technical": {
			"api", "configuration", "deployment", "architecture", "protocol",
			"server", "database", "network", "framework", "infrastructure",
			"kubernetes", "docker", "container", "microservices", "terraform",
			"pipeline", "devops", "observability", "telemetry", "authentication",
			"backup", "failover", "replica", "latency", "throughput",
		},
		"code": {
			"function", "class", "method", "variable", "compile", "debug",
			"refactor", "algorithm", "implementation", "snippet", "syntax",
			"bug", "unit test", "library", "dependency", "source code",
		},
		"creative": {
			"story", "poem", "fiction", "character", "plot", "narrative",
			"scene", "lyrics", "creative", "imagine", "brainstorm",
		},
		"research": {
			"study", "hypothesis", "literature", "methodology", "citation",
			"peer-reviewed", "experiment", "dataset", "findings", "survey",
			"research", "academic", "publication",
		},
	})
	v.SetDefault("domainPriority", []string{
		"legal", "medical", "financial", "code", "creative", "research", "technical",
	})

	v.SetDefault("reasoningVerbs", []string{
		"analyze", "analyse", "evaluate", "synthesize", "synthesise",
		"recommend", "assess", "justify", "critique",
	})
	v.SetDefault("explanatoryVerbs", []string{
		"explain", "describe", "summarize", "summarise", "walk through", "outline",
	})
	v.SetDefault("conjunctionMarkers", []string{
		" and ", " compare ", " versus ", " vs ", " as well as ", " along with ",
	})

	v.SetDefault("uncertaintyPhrases", []string{
		"i'm not sure", "i am not sure", "i don't know", "i do not know",
		"it's unclear", "it is unclear", "cannot determine", "can't determine",
		"insufficient information", "hard to say", "might be", "possibly",
		"not found in local context",
	})
	v.SetDefault("hallucinationPhrases", []string{
		"as an ai", "as a language model", "i don't have access",
		"i do not have access", "i apologize", "i apologise",
		"i cannot browse", "my training data", "my knowledge cutoff",
	})
	v.SetDefault("confidencePhrases", []string{
		"according to", "based on the context", "the document states",
		"the context shows", "specifically", "as cited",
	})

	v.SetDefault("weights.localCitation", 0.4)
	v.SetDefault("weights.localResponse", 0.3)
	v.SetDefault("weights.localContext", 0.3)
	v.SetDefault("weights.cloudCitation", 0.2)
	v.SetDefault("weights.cloudResponse", 0.6)
	v.SetDefault("weights.cloudContext", 0.2)
	v.SetDefault("weights.balancedCitation", 0.3)
	v.SetDefault("weights.balancedResponse", 0.4)
	v.SetDefault("weights.balancedContext", 0.3)

	v.SetDefault("thresholds.escalation", 0.6)
	v.SetDefault("thresholds.chunkOverlap", 0.1)
	v.SetDefault("thresholds.sufficientOverlap", 0.15)
	v.SetDefault("thresholds.answerOverlap", 0.2)
	v.SetDefault("thresholds.minAnswerChars", 50)
	v.SetDefault("thresholds.specializedJargon", 0.5)
	v.SetDefault("thresholds.domainMinDensity", 0.1)
}
