package core

import "strings"

// BuildCardText renders the descriptive text submitted for embedding.
//
// The name is always the first line. Purpose and use case follow when
// non-empty, then "Category: ..." and "Industry: ..." lines when those
// fields are non-empty. Lines are joined with a single newline and the
// result has no trailing newline.
func BuildCardText(r Record) string {
	parts := make([]string, 0, 5)
	parts = append(parts, r.Name)
	if r.Purpose != "" {
		parts = append(parts, r.Purpose)
	}
	if r.UseCase != "" {
		parts = append(parts, r.UseCase)
	}
	// Category and industry give the embedding more context for similarity
	if r.Category != "" {
		parts = append(parts, "Category: "+r.Category)
	}
	if r.Industry != "" {
		parts = append(parts, "Industry: "+r.Industry)
	}
	return strings.Join(parts, "\n")
}

// BuildCardItems builds card texts for records, preserving their order.
func BuildCardItems(records []Record) []CardItem {
	items := make([]CardItem, len(records))
	for i, r := range records {
		items[i] = CardItem{Name: r.Name, Text: BuildCardText(r)}
	}
	return items
}
