// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/cardvec/core"
)

// Field keys of a model block, in the order they must appear.
const (
	keyPurpose  = "purpose"
	keyUseCase  = "useCase"
	keyCategory = "category"
	keyIndustry = "industry"
)

// Extractor finds model blocks in catalog text.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates a new extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans text for blocks shaped like
//
//	"<name>": { "purpose": "...", "useCase": "...", "category": "...", "industry": "..." }
//
// and returns the records in the order they appear. Every double quote is a
// candidate block start; when no block matches there, scanning resumes at the
// next byte, so stray quotes outside the catalog never hide later blocks.
// Returns core.ErrNoRecords if nothing matched.
func (e *Extractor) Extract(text string) (*RecordSet, error) {
	set := NewRecordSet()
	candidates := 0

	for pos := 0; pos < len(text); {
		i := strings.IndexByte(text[pos:], '"')
		if i < 0 {
			break
		}
		start := pos + i
		candidates++

		record, end, ok := matchBlock(text, start)
		if !ok {
			pos = start + 1
			continue
		}
		if set.Put(record) {
			e.logger.Debug("duplicate model name, keeping last definition", "name", record.Name)
		}
		pos = end
	}

	if set.Len() == 0 {
		return nil, core.ErrNoRecords
	}

	e.logger.Debug("extracted models", "count", set.Len(), "candidates", candidates)
	return set, nil
}

// ExtractFile reads path and extracts its records.
func (e *Extractor) ExtractFile(path string) (*RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	set, err := e.Extract(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Extract scans text with a default Extractor.
func Extract(text string) (*RecordSet, error) {
	return NewExtractor().Extract(text)
}

// matchBlock tries to recognize a model block starting at byte offset start.
// On success it returns the record and the offset just past the industry value.
func matchBlock(src string, start int) (core.Record, int, bool) {
	m := matcher{lexer: NewLexerAt(src, start)}

	name, ok := m.plainString()
	if !ok || name == "" {
		return core.Record{}, 0, false
	}
	if !m.kind(TokenColon) || !m.kind(TokenLBrace) {
		return core.Record{}, 0, false
	}

	purpose, ok := m.field(keyPurpose, true)
	if !ok || !m.kind(TokenComma) {
		return core.Record{}, 0, false
	}
	useCase, ok := m.field(keyUseCase, true)
	if !ok || !m.kind(TokenComma) {
		return core.Record{}, 0, false
	}
	category, ok := m.field(keyCategory, false)
	if !ok || !m.kind(TokenComma) {
		return core.Record{}, 0, false
	}
	industry, ok := m.field(keyIndustry, false)
	if !ok {
		return core.Record{}, 0, false
	}

	return core.Record{
		Name:     name,
		Purpose:  cleanText(purpose),
		UseCase:  cleanText(useCase),
		Category: strings.TrimSpace(category),
		Industry: strings.TrimSpace(industry),
	}, m.lexer.Offset(), true
}

// matcher pulls tokens from a lexer one at a time. A token is consumed only
// when it matches, and at most one token is read ahead.
type matcher struct {
	lexer   *Lexer
	next    Token
	pending bool
}

func (m *matcher) peek() (Token, bool) {
	if !m.pending {
		m.next = m.lexer.Next()
		m.pending = true
	}
	if m.next.Kind == TokenEOF {
		return Token{}, false
	}
	return m.next, true
}

func (m *matcher) advance() {
	m.pending = false
}

func (m *matcher) kind(k TokenKind) bool {
	tok, ok := m.peek()
	if !ok || tok.Kind != k {
		return false
	}
	m.advance()
	return true
}

// plainString consumes a string literal that contains no backslash.
func (m *matcher) plainString() (string, bool) {
	tok, ok := m.peek()
	if !ok || tok.Kind != TokenString || tok.Escaped {
		return "", false
	}
	m.advance()
	return tok.Value, true
}

// field consumes `"<key>": "<value>"`. Escapes in the value are only
// accepted when allowEscapes is set.
func (m *matcher) field(key string, allowEscapes bool) (string, bool) {
	k, ok := m.plainString()
	if !ok || k != key || !m.kind(TokenColon) {
		return "", false
	}
	tok, ok := m.peek()
	if !ok || tok.Kind != TokenString {
		return "", false
	}
	if tok.Escaped && !allowEscapes {
		return "", false
	}
	m.advance()
	return tok.Value, true
}
