package domain

// ItemDescription — вещь, описанная моделью в формате "**Название** is|are описание."
type ItemDescription struct {
	Name        string
	Description string
}

// Alternative — товар из поисковой выдачи магазина.
type Alternative struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// ItemAlternatives связывает описанную вещь с найденными альтернативами.
// Порядок элементов совпадает с порядком вещей в тексте ответа.
type ItemAlternatives struct {
	Item         ItemDescription
	Alternatives []Alternative
}
