package config

import (
	"bufio"
	"os"
	"strings"
)

// The built-in expense category list, used when no seed file overrides it.
// The labels double as the grouping keys of the monthly breakdown, so a
// deployment can swap the whole set without touching the engine.
var defaultCategories = []string{
	"Продукты 🍎",
	"Коммунальные услуги 🏠",
	"Транспорт 🚕",
	"Связь/интернет 🛜",
	"Животные 🐱",
	"Здоровье 💊",
	"Привычки 🚬",
	"Красота 🪒",
	"Кредиты 💳",
	"Развлечения 🎭",
	"Прочее 🧩",
}

// DefaultExpenseCategory is the catch-all an expense falls into when the
// user picks nothing.
const DefaultExpenseCategory = "Прочее 🧩"

// ExpenseCategories loads the category enumeration from the seed file (one
// label per line, '#' starts a comment). A missing or empty file falls back
// to the built-in list.
func ExpenseCategories(path string) []string {
	cats := readLines(path)
	if len(cats) == 0 {
		return append([]string(nil), defaultCategories...)
	}
	return cats
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	seen := map[string]struct{}{}
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
