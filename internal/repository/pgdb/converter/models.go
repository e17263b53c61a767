package converter

// CatalogItemModel — строка таблицы catalog_items.
type CatalogItemModel struct {
	ID        int64
	ItemName  string
	Price     *string
	Link      string
	ImageURL  string
	Embedding []float32 // NULL → nil
}
