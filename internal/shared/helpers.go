// Package shared — небольшие общие утилиты без внешних зависимостей:
// разбор списков из строки ввода и безопасная работа со слайсами.
package shared

import "strings"

// Unique возвращает срез уникальных значений, сохраняя порядок первого появления.
func Unique[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GetAt безопасно возвращает элемент слайса по индексу i. Вне границ — нулевое значение и false.
func GetAt[T any](s []T, i int) (T, bool) {
	if i < 0 || i >= len(s) {
		var zero T
		return zero, false
	}
	return s[i], true
}

// SplitList делит строку по sep, обрезает пробелы и отбрасывает пустые элементы.
// Для строки без значимых элементов возвращает nil.
func SplitList(line, sep string) []string {
	var out []string
	for _, part := range strings.Split(line, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
