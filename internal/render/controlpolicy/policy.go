// Package controlpolicy resolves a concrete control kind for fields that do
// not declare a usable formItemType. Rules live in a YAML or JSON file that
// is hot-reloaded on change, so operators can tune the mapping without a
// restart. The final fallback is always the plain text input.
package controlpolicy

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Policy is the configuration for automatic control resolution.
type Policy struct {
	Version int    `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// Rule maps matching fields to a control kind. Rules are evaluated in order;
// the first match wins.
type Rule struct {
	ID      string   `yaml:"id" json:"id"`
	When    RuleWhen `yaml:"when" json:"when"`
	Control string   `yaml:"control" json:"control"`
}

// RuleWhen holds the match conditions. Empty fields match everything.
type RuleWhen struct {
	NameRegex    string `yaml:"name_regex" json:"name_regex"`
	HasOptions   *bool  `yaml:"has_options" json:"has_options"`
	Hierarchical *bool  `yaml:"hierarchical" json:"hierarchical"`
}

// FieldCtx describes the field being resolved.
type FieldCtx struct {
	DataIndex    string
	HasOptions   bool
	Hierarchical bool
}

// DefaultControl is the control every unresolved field ends up with.
const DefaultControl = "text"

// Resolve returns the control kind for the first matching rule, or the text
// default when nothing matches.
func (p *Policy) Resolve(ctx FieldCtx) string {
	for _, r := range p.Rules {
		if matchRule(r.When, ctx) {
			if r.Control == "" {
				return DefaultControl
			}
			return strings.ToLower(r.Control)
		}
	}
	return DefaultControl
}

func matchRule(w RuleWhen, ctx FieldCtx) bool {
	if w.HasOptions != nil && *w.HasOptions != ctx.HasOptions {
		return false
	}
	if w.Hierarchical != nil && *w.Hierarchical != ctx.Hierarchical {
		return false
	}
	if w.NameRegex != "" {
		re, err := regexp.Compile(w.NameRegex)
		if err != nil || !re.MatchString(ctx.DataIndex) {
			return false
		}
	}
	return true
}

// Store watches a policy file and exposes the current policy.
type Store struct {
	path   string
	logger *slog.Logger
	val    atomic.Value // *Policy
}

// NewStore loads the policy from path.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Policy returns the current policy. A nil store always resolves to the
// text default.
func (s *Store) Policy() *Policy {
	if s == nil {
		return &Policy{}
	}
	if v := s.val.Load(); v != nil {
		return v.(*Policy)
	}
	return &Policy{}
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	pol, err := parsePolicy(b)
	if err != nil {
		return err
	}
	s.val.Store(pol)
	return nil
}

// Start watches the policy file for changes until ctx is done.
func (s *Store) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case ev := <-watcher.Events:
				if ev.Name == s.path && (ev.Op&(fsnotify.Write|fsnotify.Create)) != 0 {
					if err := s.load(); err != nil {
						s.logger.Warn("reload control policy", "err", err)
					} else {
						s.logger.Info("control policy reloaded")
					}
				}
			case <-ctx.Done():
				return
			case err := <-watcher.Errors:
				if err != nil {
					s.logger.Warn("control policy watch error", "err", err)
				}
			}
		}
	}()
	return nil
}

// parsePolicy parses YAML or JSON.
func parsePolicy(b []byte) (*Policy, error) {
	var pol Policy
	if json.Valid(b) {
		if err := json.Unmarshal(b, &pol); err != nil {
			return nil, err
		}
		return &pol, nil
	}
	if err := yaml.Unmarshal(b, &pol); err != nil {
		return nil, err
	}
	return &pol, nil
}
