package usecase

import (
	"strings"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

// ExtractItemDescriptions находит в ответе модели фрагменты вида
// "**Название** is|are описание." и возвращает их в порядке появления, без дедупликации.
//
// Описание заканчивается первой точкой, за которой следует перевод строки (возможно,
// после пробелов), жирный текст "**" или конец строки. Внутри описания допускаются
// переводы строк. Это эвристика: формат ответа модели не гарантирован.
func ExtractItemDescriptions(text string) []domain.ItemDescription {
	var (
		items []domain.ItemDescription
		pos   int
	)

	for pos < len(text) {
		start := strings.Index(text[pos:], "**")
		if start < 0 {
			break
		}
		start += pos

		item, end, ok := matchItemAt(text, start)
		if !ok {
			pos = start + 1
			continue
		}

		items = append(items, item)
		pos = end
	}

	return items
}

// matchItemAt пытается сопоставить описание вещи, начинающееся с "**" в позиции start.
// Название перебирается от самого короткого к длинному, как при ленивом сопоставлении.
func matchItemAt(text string, start int) (domain.ItemDescription, int, bool) {
	nameStart := start + 2

	for nameEnd := nameStart; nameEnd+2 <= len(text); nameEnd++ {
		if text[nameEnd] != '*' || text[nameEnd+1] != '*' {
			continue
		}

		descStart, ok := matchVerb(text, nameEnd+2)
		if !ok {
			continue
		}

		descEnd, ok := matchSentence(text, descStart)
		if !ok {
			continue
		}

		return domain.ItemDescription{
			Name:        strings.TrimSpace(text[nameStart:nameEnd]),
			Description: strings.TrimSpace(text[descStart:descEnd]),
		}, descEnd, true
	}

	return domain.ItemDescription{}, 0, false
}

// matchVerb сопоставляет `\s+(is|are)\s+` и возвращает позицию после него.
func matchVerb(text string, i int) (int, bool) {
	j := skipSpace(text, i)
	if j == i {
		return 0, false
	}

	switch {
	case strings.HasPrefix(text[j:], "is"):
		j += 2
	case strings.HasPrefix(text[j:], "are"):
		j += 3
	default:
		return 0, false
	}

	k := skipSpace(text, j)
	if k == j {
		return 0, false
	}

	return k, true
}

// matchSentence ищет первую подходящую точку начиная с i и возвращает позицию сразу за ней.
func matchSentence(text string, i int) (int, bool) {
	for p := i; p < len(text); p++ {
		if text[p] != '.' {
			continue
		}

		rest := text[p+1:]
		if rest == "" || strings.HasPrefix(rest, "**") || newlineAhead(rest) {
			return p + 1, true
		}
	}

	return 0, false
}

// newlineAhead сообщает, встречается ли перевод строки среди ведущих пробельных символов.
func newlineAhead(s string) bool {
	for i := 0; i < len(s) && isSpace(s[i]); i++ {
		if s[i] == '\n' {
			return true
		}
	}

	return false
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}

	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}

	return false
}
