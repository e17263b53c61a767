package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogEntry описывает одну позицию каталога (строку сериализованной таблицы).
// Embedding равен nil, если для строки нет данных изображения.
type CatalogEntry struct {
	Row       int // порядковый номер строки в каталоге
	ItemName  string
	Price     Price
	Link      string
	ImageURL  string // изображение, на котором обнаружена позиция
	Embedding []float32
}

// HasEmbedding сообщает, участвует ли строка в поиске ближайшего совпадения.
func (c *CatalogEntry) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Price — цена позиции. В таблице цена бывает числом или произвольным текстом.
// Raw хранит значение ровно так, как оно записано в каталоге; Amount заполнен,
// если текст разбирается как число.
type Price struct {
	Amount  decimal.Decimal
	Raw     string
	Numeric bool
	literal bool // в JSON цена была числом, а не строкой
}

func NewPrice(raw string) Price {
	raw = strings.TrimSpace(raw)
	if d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$")); err == nil {
		return Price{Amount: d, Raw: raw, Numeric: true}
	}

	return Price{Raw: raw}
}

// String возвращает цену в записи каталога без ведущего символа валюты: "19.90", "1e2" или исходный текст.
func (p Price) String() string {
	if p.Raw != "" {
		return strings.TrimPrefix(p.Raw, "$")
	}

	if p.Numeric {
		return p.Amount.String()
	}

	return ""
}

// UnmarshalJSON принимает число, строку или null. Числовой литерал сохраняется как есть.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = NewPrice(s)
		return nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = Price{Amount: d, Raw: string(data), Numeric: true, literal: true}

	return nil
}

// MarshalJSON записывает цену в исходном виде: числовой литерал числом, текст строкой.
func (p Price) MarshalJSON() ([]byte, error) {
	if p.literal && p.Raw != "" {
		return []byte(p.Raw), nil
	}

	if p.Raw == "" && p.Numeric {
		return []byte(p.Amount.String()), nil
	}

	return json.Marshal(p.Raw)
}
