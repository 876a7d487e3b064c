package utils

import (
	"reflect"
	"strings"
)

var ColumnTag = "db"

// dbFields calls fn for every exported field of the struct behind input that
// carries a column tag. Fields tagged "-" are display-only and skipped.
func dbFields(input any, fn func(column string, value reflect.Value)) {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	for i := range v.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fn(column, v.Field(i))
	}
}

// Columns lists the column names of a row type in field order.
func Columns(input any) []string {
	var out []string
	dbFields(input, func(column string, _ reflect.Value) {
		out = append(out, column)
	})
	return out
}

// ColumnValues maps column names to field values, ready for squirrel's SetMap.
func ColumnValues(input any) map[string]any {
	out := make(map[string]any)
	dbFields(input, func(column string, value reflect.Value) {
		out[column] = value.Interface()
	})
	return out
}

// QualifyColumns prefixes each column with a table alias.
func QualifyColumns(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

func JoinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
