// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package conllu reads CoNLL-U treebank files into raw token records.
// The reader validates only the line structure of the format. Linguistic
// consistency (word id sequencing, head resolution) is left to consumers
// which know whether they deal with basic or enhanced annotations.
package conllu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const numColumns = 10

const textCommentPrefix = "# text ="

// Token is a single row of a CoNLL-U sentence block. All the columns
// are kept as found in the file, including the '_' placeholders and
// the multiword range ("3-4") and empty node ("3.1") id notations.
type Token struct {
	ID     string
	Form   string
	Lemma  string
	UPos   string
	XPos   string
	Feats  string
	Head   string
	Deprel string
	Deps   string
	Misc   string
}

// IsMultiwordRange tests whether the token is a surface token covering
// a range of syntactic words.
func (t *Token) IsMultiwordRange() bool {
	return strings.Contains(t.ID, "-")
}

// IsEmptyNode tests whether the token is an elided word inserted for
// the enhanced dependency graph.
func (t *Token) IsEmptyNode() bool {
	return strings.Contains(t.ID, ".")
}

// Sentence is one block of a CoNLL-U file, i.e. its comments followed
// by token rows, terminated by a blank line.
type Sentence struct {
	Comments []string
	Text     string
	Tokens   []*Token
}

// ParseError describes a structural problem of a CoNLL-U file. The Line
// value is 1-based.
type ParseError struct {
	Line    int
	Message string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", err.Line, err.Message)
}

// Read reads a complete CoNLL-U document. Comments may precede the
// token rows of each sentence; a comment between token rows is an
// error, just like a row with a wrong number of columns. Every
// sentence, the last one included, must be terminated by a blank line.
func Read(r io.Reader) ([]Sentence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var (
		sentences []Sentence
		curr      *Sentence
		lineNum   int
	)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			if curr != nil {
				if len(curr.Tokens) == 0 {
					return nil, &ParseError{lineNum, "sentence block contains no token rows"}
				}
				sentences = append(sentences, *curr)
				curr = nil
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			if curr != nil && len(curr.Tokens) > 0 {
				return nil, &ParseError{lineNum, "comment between token rows"}
			}
			if curr == nil {
				curr = &Sentence{}
			}
			curr.Comments = append(curr.Comments, line)
			if strings.HasPrefix(line, textCommentPrefix) {
				curr.Text = strings.TrimSpace(line[len(textCommentPrefix):])
			}
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != numColumns {
			return nil, &ParseError{
				lineNum,
				fmt.Sprintf("expected %d tab-separated columns, found %d", numColumns, len(cols)),
			}
		}
		if curr == nil {
			curr = &Sentence{}
		}
		curr.Tokens = append(curr.Tokens, &Token{
			ID:     cols[0],
			Form:   cols[1],
			Lemma:  cols[2],
			UPos:   cols[3],
			XPos:   cols[4],
			Feats:  cols[5],
			Head:   cols[6],
			Deprel: cols[7],
			Deps:   cols[8],
			Misc:   cols[9],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if curr != nil {
		return nil, &ParseError{lineNum, "the file does not end with a blank line"}
	}
	return sentences, nil
}

// ReadFile reads a CoNLL-U document from a file.
func ReadFile(path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CoNLL-U file: %w", err)
	}
	defer f.Close()
	ans, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read CoNLL-U file %s: %w", path, err)
	}
	return ans, nil
}
