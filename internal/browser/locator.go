package browser

import "strings"

// Locator описывает одну стратегию поиска элемента: CSS-селектор и
// необязательный фильтр по видимому тексту.
//
// Списки локаторов — данные: порядок элементов задаёт приоритет,
// обработчики шагов не содержат логики поиска.
type Locator struct {
	// CSS — селектор элемента.
	CSS string

	// Text — подстрока текста элемента. Пустая строка отключает фильтр.
	Text string
}

// Sel — локатор без текстового фильтра.
func Sel(css string) Locator {
	return Locator{CSS: css}
}

// SelText — локатор с фильтром по тексту.
func SelText(css, text string) Locator {
	return Locator{CSS: css, Text: text}
}

// String возвращает читаемое описание локатора для логов и ошибок.
func (l Locator) String() string {
	if l.Text == "" {
		return l.CSS
	}
	return l.CSS + " {" + l.Text + "}"
}

// Describe объединяет список локаторов в строку для сообщений об ошибках.
func Describe(locators []Locator) string {
	parts := make([]string, len(locators))
	for i, l := range locators {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
