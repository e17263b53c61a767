package domain

// EncodedImage — результат работы извлекателя эмбеддингов:
// JPEG-копия изображения в base64 и вектор признаков.
type EncodedImage struct {
	Base64 string
	Vector []float32
}

func NewEncodedImage(base64 string, vector []float32) *EncodedImage {
	return &EncodedImage{
		Base64: base64,
		Vector: vector,
	}
}

// Tensor — нормализованное изображение в раскладке NCHW.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// ImageSource описывает, откуда брать изображение запроса.
type ImageSource struct {
	Location string // путь к файлу или URL
	IsURL    bool
	Data     []byte // если задано, Location не используется
}
