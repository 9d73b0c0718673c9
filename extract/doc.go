// Package extract reads model records out of the semi-structured catalog
// source (a JavaScript file holding an object literal of model entries).
//
// The catalog is not parsed as JavaScript or JSON. A Lexer splits it into
// string, punctuation and "other" tokens, and the Extractor recognizes the
// token sequence of a model block:
//
//	"<name>": { "purpose": "<p>", "useCase": "<u>", "category": "<c>", "industry": "<i>" }
//
// Purpose and use case values may span lines and contain backslash escapes;
// they are cleaned after extraction. Everything that is not part of a complete
// block is ignored, so surrounding code, comments and unrelated objects do
// not affect the result as long as their string literals are balanced.
package extract
