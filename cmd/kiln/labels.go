package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// typeLabel turns an item type tag like "mari.texture" into a display label
// like "Mari Texture".
func typeLabel(itemType string) string {
	itemType = strings.TrimSpace(itemType)
	if itemType == "" {
		return "Item"
	}
	parts := strings.FieldsFunc(itemType, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	return titleCaser.String(strings.Join(parts, " "))
}
