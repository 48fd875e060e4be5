package strategy

import (
	"fmt"
	"strings"

	"github.com/axontrace/spikenet/pkg/errs"
)

// Config is the wire shape strategies are configured from: a name, bank
// capacity, similarity threshold, and two loosely-typed parameter maps so new
// strategies can add knobs without changing the config schema.
type Config struct {
	Name                string
	MaxPatterns         int
	SimilarityThreshold float64
	RealParams          map[string]float64
	IntParams           map[string]int
}

func (c Config) realParam(name string, def float64) float64 {
	if v, ok := c.RealParams[name]; ok {
		return v
	}
	return def
}

var nameSynonyms = map[string]string{
	"append":         "append",
	"replace_worst":  "replace_worst",
	"replaceworst":   "replace_worst",
	"merge_similar":  "merge_similar",
	"mergesimilar":   "merge_similar",
	"hybrid":         "hybrid",
}

// New resolves a Config's strategy name (case-insensitive, with common
// synonyms) and builds the corresponding Strategy plus a Bank sized to
// MaxPatterns. Returns errs.ErrUnknownStrategy for an unrecognized name.
func New(cfg Config) (Strategy, *Bank, error) {
	canonical, ok := nameSynonyms[strings.ToLower(strings.TrimSpace(cfg.Name))]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", errs.ErrUnknownStrategy, cfg.Name)
	}

	alpha := cfg.realParam("blend_alpha", 0.2)
	mergeWeight := cfg.realParam("merge_weight", 0.3)
	mergeThreshold := cfg.realParam("merge_threshold", 0.85)
	if mergeThreshold < cfg.SimilarityThreshold+0.1 {
		mergeThreshold = cfg.SimilarityThreshold + 0.1
	}

	bank := NewBank(cfg.MaxPatterns)

	var s Strategy
	switch canonical {
	case "append":
		s = NewAppend(cfg.SimilarityThreshold, alpha)
	case "replace_worst":
		s = NewReplaceWorst(cfg.SimilarityThreshold, alpha)
	case "merge_similar":
		s = NewMergeSimilar(cfg.SimilarityThreshold, mergeWeight)
	case "hybrid":
		s = NewHybrid(cfg.SimilarityThreshold, mergeThreshold, alpha, mergeWeight)
	}
	return s, bank, nil
}
