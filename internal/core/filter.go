// Package core filters, sorts and looks up active notifications for listings.
package core

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/notext/internal/model"
)

// FilterOp is a comparison operator in a filter expression.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="
	FilterOpNotEqual  FilterOp = "!="
	FilterOpContains  FilterOp = "~" // case-insensitive
	FilterOpRegex     FilterOp = "~="
	FilterOpGreater   FilterOp = ">"
	FilterOpLess      FilterOp = "<"
	FilterOpGreaterEq FilterOp = ">="
	FilterOpLessEq    FilterOp = "<="
)

// scanOrder lists operators so that a two-character operator is found before
// its one-character prefix.
var scanOrder = []FilterOp{
	FilterOpNotEqual, FilterOpGreaterEq, FilterOpLessEq, FilterOpRegex,
	FilterOpEqual, FilterOpContains, FilterOpGreater, FilterOpLess,
}

// fieldNames maps accepted spellings to canonical field names.
var fieldNames = map[string]string{
	"app": "app", "app_name": "app", "appname": "app", "app_id": "app",
	"summary": "summary", "title": "summary",
	"body": "body", "message": "body",
	"id": "id",
	"timestamp": "timestamp", "time": "timestamp", "ts": "timestamp",
}

// FilterCondition is one "field op value" term.
type FilterCondition struct {
	Field    string // app, summary, body, id or timestamp
	Operator FilterOp
	Value    string

	re    *regexp.Regexp
	id    uint32
	after time.Time // timestamp values are ages, resolved against parse time
}

// FilterExpr is a conjunction of conditions.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions holds the simple list flags.
type FilterOptions struct {
	Since     time.Duration // Only notifications received within this long (0 = all)
	AppFilter string        // Exact app name
	Limit     int           // 0 = unlimited
}

// Filter applies opts, keeping display order.
func Filter(notifications []model.Notification, opts FilterOptions) []model.Notification {
	var cutoff time.Time
	if opts.Since > 0 {
		cutoff = time.Now().Add(-opts.Since)
	}

	result := make([]model.Notification, 0, len(notifications))
	for _, n := range notifications {
		if !cutoff.IsZero() && n.ReceivedAt.Before(cutoff) {
			continue
		}
		if opts.AppFilter != "" && n.AppName != opts.AppFilter {
			continue
		}
		result = append(result, n)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result
}

var durationUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDuration accepts Go durations plus whole days ("7d") and weeks ("1w").
// "" and "0" mean no limit.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	for suffix, unit := range durationUnits {
		if count, ok := strings.CutSuffix(s, suffix); ok {
			n, err := strconv.Atoi(count)
			if err != nil {
				return 0, fmt.Errorf("invalid duration: %s", s)
			}
			return time.Duration(n) * unit, nil
		}
	}
	return time.ParseDuration(s)
}

// ParseFilter parses comma-separated conditions such as
// "app=Slack,summary~error,id>10". All conditions must hold.
//
// Fields: app, summary, body, id, timestamp. Operators: = != ~ ~= > < >= <=.
// A timestamp value is an age: "timestamp>10m" keeps notifications received
// in the last ten minutes.
func ParseFilter(expr string) (*FilterExpr, error) {
	f := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	return f, nil
}

func parseCondition(s string) (FilterCondition, error) {
	for _, op := range scanOrder {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(s[:idx]))
		field, ok := fieldNames[name]
		if !ok {
			return FilterCondition{}, fmt.Errorf("unknown filter field: %s", name)
		}
		cond := FilterCondition{
			Field:    field,
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.compile(); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}
	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// compile parses the value once for the field and operator.
func (c *FilterCondition) compile() error {
	switch c.Field {
	case "id":
		id, err := strconv.ParseUint(c.Value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid id value: %s", c.Value)
		}
		c.id = uint32(id)
	case "timestamp":
		age, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid timestamp value: %w", err)
		}
		c.after = time.Now().Add(-age)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.re = re
	}
	return nil
}

// Match reports whether n satisfies every condition.
func (f *FilterExpr) Match(n model.Notification) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(n) {
			return false
		}
	}
	return true
}

// Match reports whether n satisfies the condition.
func (c *FilterCondition) Match(n model.Notification) bool {
	switch c.Field {
	case "app":
		return c.matchText(n.AppName)
	case "summary":
		return c.matchText(n.Summary)
	case "body":
		return c.matchText(n.Body)
	case "id":
		return c.ordered(cmp.Compare(n.ID, c.id), true)
	case "timestamp":
		return c.ordered(n.ReceivedAt.Compare(c.after), false)
	}
	return false
}

func (c *FilterCondition) matchText(s string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return s == c.Value
	case FilterOpNotEqual:
		return s != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.re != nil && c.re.MatchString(s)
	}
	return false
}

// ordered applies a comparison operator to a cmp-style result.
// Equality operators apply only when equality is meaningful for the field.
func (c *FilterCondition) ordered(r int, equality bool) bool {
	switch c.Operator {
	case FilterOpGreater:
		return r > 0
	case FilterOpLess:
		return r < 0
	case FilterOpGreaterEq:
		return r >= 0
	case FilterOpLessEq:
		return r <= 0
	case FilterOpEqual:
		return equality && r == 0
	case FilterOpNotEqual:
		return equality && r != 0
	}
	return false
}

// FilterWithExpr keeps the notifications matching expr. A nil or empty
// expression keeps everything.
func FilterWithExpr(notifications []model.Notification, expr *FilterExpr) []model.Notification {
	if expr == nil || len(expr.Conditions) == 0 {
		return notifications
	}
	return slices.DeleteFunc(slices.Clone(notifications), func(n model.Notification) bool {
		return !expr.Match(n)
	})
}
