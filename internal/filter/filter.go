// Package filter evaluates typed boolean filter conditions against product
// records. Conditions never match absent data: a nil field value fails the
// condition unconditionally.
package filter

import (
	"strconv"
	"strings"
	"time"

	"go-eol-dashboard/internal/model"
)

// FieldType determines how a condition's operator and values are interpreted.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldEnum    FieldType = "enum"
)

// Logic combines conditions or groups.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition binds a field, a typed operator and one or two comparison values.
// Transient request object, never stored.
type Condition struct {
	ID       string      `json:"id"`
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Type     FieldType   `json:"type"`
	Value    interface{} `json:"value"`
	Value2   interface{} `json:"value2,omitempty"` // Range end for "between"
}

// Group combines conditions with AND/OR logic.
type Group struct {
	ID         string      `json:"id"`
	Logic      Logic       `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

// Evaluate evaluates a single condition against a product view.
func Evaluate(v *model.ProductView, c Condition) bool {
	acc, ok := fields[c.Field]
	if !ok {
		return false
	}
	value, ok := acc.get(v)
	if !ok {
		return false
	}

	switch c.Type {
	case FieldText:
		return evaluateText(value, c)
	case FieldNumber:
		return evaluateNumber(value, c)
	case FieldDate:
		return evaluateDate(value, c)
	case FieldBoolean:
		return evaluateBoolean(value, c)
	case FieldEnum:
		return evaluateEnum(value, c)
	default:
		return false
	}
}

// EvaluateGroup applies a group's AND/OR logic over its conditions. An empty
// condition list is a no-op filter and matches everything.
func EvaluateGroup(v *model.ProductView, g Group) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	for _, c := range g.Conditions {
		matched := Evaluate(v, c)
		if g.Logic == LogicOr && matched {
			return true
		}
		if g.Logic != LogicOr && !matched {
			return false
		}
	}
	return g.Logic != LogicOr
}

// EvaluateAll composes multiple groups with the same AND/OR semantics.
func EvaluateAll(v *model.ProductView, groups []Group, groupLogic Logic) bool {
	if len(groups) == 0 {
		return true
	}
	for _, g := range groups {
		matched := EvaluateGroup(v, g)
		if groupLogic == LogicOr && matched {
			return true
		}
		if groupLogic != LogicOr && !matched {
			return false
		}
	}
	return groupLogic != LogicOr
}

func evaluateText(value interface{}, c Condition) bool {
	fieldValue := strings.ToLower(toString(value))
	searchValue := strings.ToLower(toString(c.Value))

	switch c.Operator {
	case "contains":
		return strings.Contains(fieldValue, searchValue)
	case "equals":
		return fieldValue == searchValue
	case "starts_with":
		return strings.HasPrefix(fieldValue, searchValue)
	case "ends_with":
		return strings.HasSuffix(fieldValue, searchValue)
	case "not_contains":
		return !strings.Contains(fieldValue, searchValue)
	default:
		return false
	}
}

func evaluateNumber(value interface{}, c Condition) bool {
	fieldValue, ok := toFloat(value)
	if !ok {
		return false
	}
	compareValue, ok := toFloat(c.Value)
	if !ok {
		return false
	}

	switch c.Operator {
	case "equals":
		return fieldValue == compareValue
	case "not_equals":
		return fieldValue != compareValue
	case "greater_than":
		return fieldValue > compareValue
	case "greater_than_or_equal":
		return fieldValue >= compareValue
	case "less_than":
		return fieldValue < compareValue
	case "less_than_or_equal":
		return fieldValue <= compareValue
	case "between":
		upper, ok := toFloat(c.Value2)
		if !ok {
			return false
		}
		return fieldValue >= compareValue && fieldValue <= upper
	default:
		return false
	}
}

func evaluateDate(value interface{}, c Condition) bool {
	fieldDate, ok := toDate(value)
	if !ok {
		return false
	}
	compareDate, ok := toDate(c.Value)
	if !ok {
		return false
	}

	switch c.Operator {
	case "equals":
		return fieldDate.Equal(compareDate)
	case "before":
		return fieldDate.Before(compareDate)
	case "after":
		return fieldDate.After(compareDate)
	case "between":
		endDate, ok := toDate(c.Value2)
		if !ok {
			return false
		}
		return !fieldDate.Before(compareDate) && !fieldDate.After(endDate)
	default:
		return false
	}
}

func evaluateBoolean(value interface{}, c Condition) bool {
	fieldValue, ok := toBool(value)
	if !ok {
		return false
	}
	compareValue, ok := toBool(c.Value)
	if !ok {
		return false
	}

	switch c.Operator {
	case "equals":
		return fieldValue == compareValue
	case "not_equals":
		return fieldValue != compareValue
	default:
		return false
	}
}

func evaluateEnum(value interface{}, c Condition) bool {
	fieldValue := toString(value)
	compareValue := toString(c.Value)

	switch c.Operator {
	case "equals":
		return fieldValue == compareValue
	case "not_equals":
		return fieldValue != compareValue
	default:
		return false
	}
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toDate normalizes both sides of a date comparison to midnight UTC so only
// the calendar day is compared.
func toDate(v interface{}) (time.Time, bool) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case string:
		var err error
		t, err = time.Parse("2006-01-02", d)
		if err != nil {
			t, err = time.Parse(time.RFC3339, d)
			if err != nil {
				return time.Time{}, false
			}
		}
	default:
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func toBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}
