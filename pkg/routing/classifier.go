package routing

import (
	"sort"
	"strings"
)

type Classifier struct {
	rules []AllowlistRule
}

// NewClassifier orders rules longest prefix first.
func NewClassifier(rules []AllowlistRule) *Classifier {
	copied := make([]AllowlistRule, 0, len(rules))
	for _, rule := range rules {
		rule.Prefix = strings.TrimSpace(rule.Prefix)
		if rule.Prefix == "" {
			continue
		}
		copied = append(copied, rule)
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return len(copied[i].Prefix) > len(copied[j].Prefix)
	})

	return &Classifier{rules: copied}
}

func (c *Classifier) ClassifyPath(path string) RouteClass {
	for _, rule := range c.rules {
		if HasPathPrefixOnBoundary(path, rule.Prefix) {
			return rule.Class
		}
	}
	if HasPathPrefixOnBoundary(path, "/api") {
		return RouteClassPublicAPI
	}
	return RouteClassUI
}

// IsAPI reports whether path expects JSON responses.
func (c *Classifier) IsAPI(path string) bool {
	class := c.ClassifyPath(path)
	return class == RouteClassPublicAPI || class == RouteClassInternalAPI
}

func HasPathPrefixOnBoundary(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	return path[len(prefix)] == '/'
}
