package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// Codec re-encodes uploaded images as JPEG for the vision model. Already-JPEG
// input is passed through untouched so scans keep their original compression.
type Codec struct {
	quality int
}

func NewCodec(quality int) *Codec {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Codec{quality: quality}
}

func (c *Codec) ToJPEG(data []byte) ([]byte, error) {
	if isJPEG(data) {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode %s as jpeg: %w", format, err)
	}
	return buf.Bytes(), nil
}

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
