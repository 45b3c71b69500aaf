package rules

import (
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
)

// FileName is the rule file written next to the ledger state.
const FileName = "trading_rules.json"

// RuleKind tags a learned blocklist predicate. Rules were string-encoded
// in an earlier revision; the tagged form is evaluated by direct numeric
// comparison instead of substring matching.
type RuleKind string

const (
	RSIAbove         RuleKind = "rsi_above"
	RSIBelow         RuleKind = "rsi_below"
	VolumeRatioAbove RuleKind = "vol_ratio_above"
)

// Learning thresholds. A rule is added only once at least MinLosingTrades
// losing round-trips exist and the mean entry metric crosses the bound.
const (
	MinLosingTrades = 3

	meanRSIUpperBound      = 72.0
	meanRSILowerBound      = 35.0
	meanVolumeRatioCeiling = 4.0
)

// Rule is one learned veto condition.
type Rule struct {
	Kind      RuleKind  `json:"kind"`
	Threshold float64   `json:"threshold"`
	AddedAt   time.Time `json:"added_at"`
}

// Condition renders the rule as the human-readable text shown on the
// dashboard and stored in the rule file.
func (r Rule) Condition() string {
	switch r.Kind {
	case RSIAbove:
		return fmt.Sprintf("RSI > %.0f", r.Threshold)
	case RSIBelow:
		return fmt.Sprintf("RSI < %.0f", r.Threshold)
	case VolumeRatioAbove:
		return fmt.Sprintf("Volume ratio > %.1f", r.Threshold)
	default:
		return string(r.Kind)
	}
}

// matches reports whether live entry metrics trip the rule.
func (r Rule) matches(m model.EntryMetrics) bool {
	switch r.Kind {
	case RSIAbove:
		return m.RSI > r.Threshold
	case RSIBelow:
		return m.RSI < r.Threshold
	case VolumeRatioAbove:
		return m.VolumeRatio > r.Threshold
	default:
		return false
	}
}

// File is the persisted shape of the rule store. Conditions carries the
// rendered rule text for dashboard display only; the tagged rules are the
// evaluated form and win on load.
type File struct {
	BlocklistConditions []Rule     `json:"blocklist_conditions"`
	Conditions          []string   `json:"conditions,omitempty"`
	MinConfidence       int        `json:"min_confidence"`
	LastLearningTS      *time.Time `json:"last_learning_ts,omitempty"`
}

// Store is the mutable learned rule set. Rules are additive only: never
// removed, never decayed, and duplicate kinds are not re-added.
type Store struct {
	mu       sync.RWMutex
	rules    []Rule
	lastRun  *time.Time
	persist  func(File) error
	now      func() time.Time
}

// NewStore builds a rule store around a persistence hook. A nil persist
// function keeps the store memory-only (used by tests).
func NewStore(persist func(File) error) *Store {
	return &Store{persist: persist, now: time.Now}
}

// Load replaces the in-memory rule set from a persisted file.
func (s *Store) Load(f File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append([]Rule(nil), f.BlocklistConditions...)
	s.lastRun = f.LastLearningTS
}

// Rules returns a copy of the active rule set.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Rule(nil), s.rules...)
}

// Evaluate checks live entry metrics against every active rule. The first
// tripped rule vetoes the buy with a descriptive reason.
func (s *Store) Evaluate(m model.EntryMetrics) (blocked bool, reason string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.matches(m) {
			return true, fmt.Sprintf("Blocked by learned rule: %s", rule.Condition())
		}
	}
	return false, ""
}

// AnalyzeMistakes re-derives rules from the losing-trade corpus. It is
// called after every losing sell; with fewer than MinLosingTrades losers
// it is a no-op. Calling it twice with the same corpus adds nothing new.
func (s *Store) AnalyzeMistakes(losing []model.TradeRecord) {
	if len(losing) < MinLosingTrades {
		return
	}

	var sumRSI, sumVol float64
	for _, rec := range losing {
		sumRSI += rec.EntryRSI
		sumVol += rec.EntryVolumeRatio
	}
	meanRSI := sumRSI / float64(len(losing))
	meanVol := sumVol / float64(len(losing))

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if meanRSI > meanRSIUpperBound {
		changed = s.addLocked(Rule{Kind: RSIAbove, Threshold: meanRSIUpperBound}) || changed
	}
	if meanRSI < meanRSILowerBound {
		changed = s.addLocked(Rule{Kind: RSIBelow, Threshold: meanRSILowerBound}) || changed
	}
	if meanVol > meanVolumeRatioCeiling {
		changed = s.addLocked(Rule{Kind: VolumeRatioAbove, Threshold: meanVolumeRatioCeiling}) || changed
	}

	ts := s.now()
	s.lastRun = &ts

	if changed {
		logger.WithFields(logger.Fields{
			"losing_trades": len(losing),
			"mean_rsi":      meanRSI,
			"mean_vol":      meanVol,
			"rules":         len(s.rules),
		}).Info("rule set updated from losing trades")
	}

	s.persistLocked()
}

// addLocked appends a rule unless one of the same kind already exists.
func (s *Store) addLocked(rule Rule) bool {
	for _, existing := range s.rules {
		if existing.Kind == rule.Kind {
			return false
		}
	}
	rule.AddedAt = s.now()
	s.rules = append(s.rules, rule)
	return true
}

func (s *Store) persistLocked() {
	if s.persist == nil {
		return
	}
	conditions := make([]string, 0, len(s.rules))
	for _, rule := range s.rules {
		conditions = append(conditions, rule.Condition())
	}
	file := File{
		BlocklistConditions: append([]Rule(nil), s.rules...),
		Conditions:          conditions,
		MinConfidence:       MinLosingTrades,
		LastLearningTS:      s.lastRun,
	}
	if err := s.persist(file); err != nil {
		// State loss risk accepted: the store keeps working in memory.
		logger.WithError(err).Error("failed to persist rule file")
	}
}
