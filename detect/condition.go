package detect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"socforge/core"
)

// regexCacheSize bounds the compiled pattern cache. Rule sets are small,
// but rules are analyst-editable so the cache must not grow unbounded.
const regexCacheSize = 256

var regexCache, _ = lru.New[string, *regexp.Regexp](regexCacheSize)

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// evalCondition evaluates a pattern condition against a single event.
// A missing field or malformed condition resolves to no-match with an
// error describing the failure; it never aborts the batch.
func evalCondition(cond *core.Condition, event *core.Event, ruleID string) (bool, error) {
	raw, ok := event.FieldValue(cond.Field)
	if !ok {
		return false, &core.MalformedEventError{EventID: event.ID, RuleID: ruleID, Field: cond.Field}
	}
	value := fieldString(raw)

	switch cond.Operator {
	case core.OpEquals:
		return value == cond.Value, nil
	case core.OpContains:
		return strings.Contains(value, cond.Value), nil
	case core.OpRegex:
		re, err := compileRegex(cond.Value)
		if err != nil {
			return false, &core.ConfigurationError{RuleID: ruleID,
				Reason: fmt.Sprintf("invalid regex %q: %v", cond.Value, err)}
		}
		return re.MatchString(value), nil
	default:
		return false, &core.ConfigurationError{RuleID: ruleID,
			Reason: fmt.Sprintf("unknown operator %q", cond.Operator)}
	}
}

// fieldString renders an event attribute for comparison and grouping.
// Numeric values render without a decimal point when integral so JSON
// round-trips (which decode ints as float64) group identically.
func fieldString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
