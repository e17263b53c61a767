// Package imaging загружает изображения запросов и готовит их для vision backbone:
// JPEG-копия в base64 и нормализованный тензор NCHW.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"os"

	// Регистрация декодеров
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"golang.org/x/image/draw"
)

// Options — параметры предобработки.
type Options struct {
	Size        int
	Mean        [3]float32
	Std         [3]float32
	JPEGQuality int
}

// Processor читает изображение из файла, по URL или из байтов.
type Processor struct {
	client   *http.Client
	maxBytes int64
	opts     Options
}

func NewProcessor(client *http.Client, maxBytes int64, opts Options) *Processor {
	return &Processor{
		client:   client,
		maxBytes: maxBytes,
		opts:     opts,
	}
}

// Read возвращает исходные байты изображения.
func (p *Processor) Read(ctx context.Context, src domain.ImageSource) ([]byte, error) {
	const op = "Processor.Read"

	switch {
	case len(src.Data) > 0:
		return src.Data, nil
	case src.IsURL:
		data, err := p.fetch(ctx, src.Location)
		if err != nil {
			return nil, e.WrapTimeout(op, e.ErrImageFetch, err)
		}
		return data, nil
	default:
		data, err := p.readFile(src.Location)
		if err != nil {
			return nil, e.WrapTimeout(op, e.ErrImageDecode, err)
		}
		return data, nil
	}
}

// Decode декодирует изображение в RGBA.
func (p *Processor) Decode(data []byte) (*image.RGBA, error) {
	const op = "Processor.Decode"

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, e.ErrImageDecode, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%s: %w: empty image", op, e.ErrImageDecode)
	}

	return flatten(img), nil
}

// flatten переводит изображение в непрозрачный RGB: альфа-канал отбрасывается,
// цвет пикселя берётся без домножения на альфу.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.YCbCr, *image.Gray:
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	case *image.NYCbCrA:
		draw.Draw(dst, dst.Bounds(), &src.YCbCr, b.Min, draw.Src)
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			d := dst.PixOffset(x, y)

			switch src := img.(type) {
			case *image.NRGBA:
				s := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				copy(dst.Pix[d:d+3], src.Pix[s:s+3])
			case *image.NRGBA64:
				c := src.NRGBA64At(b.Min.X+x, b.Min.Y+y)
				dst.Pix[d], dst.Pix[d+1], dst.Pix[d+2] = uint8(c.R>>8), uint8(c.G>>8), uint8(c.B>>8)
			default:
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.Pix[d], dst.Pix[d+1], dst.Pix[d+2] = c.R, c.G, c.B
			}
			dst.Pix[d+3] = 0xff
		}
	}

	return dst
}

// EncodeBase64 перекодирует изображение в JPEG с потерями и возвращает base64.
func (p *Processor) EncodeBase64(img image.Image) (string, error) {
	const op = "Processor.EncodeBase64"

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.JPEGQuality}); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, e.ErrImageDecode, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Tensor масштабирует изображение до Size×Size билинейно, переводит значения в [0,1]
// и нормализует по каналам. Раскладка [1, 3, H, W].
func (p *Processor) Tensor(img image.Image) domain.Tensor {
	size := p.opts.Size
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := scaled.PixOffset(x, y)
			i := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(scaled.Pix[off+c]) / 255
				data[c*plane+i] = (v - p.opts.Mean[c]) / p.opts.Std[c]
			}
		}
	}

	return domain.Tensor{
		Shape: []int64{1, 3, int64(size), int64(size)},
		Data:  data,
	}
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return p.readLimited(resp.Body)
}

func (p *Processor) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.readLimited(f)
}

func (p *Processor) readLimited(r io.Reader) ([]byte, error) {
	if p.maxBytes <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes: %w", p.maxBytes, e.ErrFileTooLarge)
	}

	return data, nil
}
