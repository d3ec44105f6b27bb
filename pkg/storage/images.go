package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("storage: unsupported image type")

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Images uploads pictures to a disk under a prefix with random keys and
// returns their public URL.
type Images struct {
	disk   Disk
	prefix string
	newKey func() string
}

func NewImages(disk Disk, prefix string) *Images {
	return &Images{disk: disk, prefix: strings.Trim(prefix, "/"), newKey: uuid.NewString}
}

// Upload sniffs the content type from the first bytes; the client's
// filename only serves logging.
func (i *Images) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	ct := http.DetectContentType(head)
	ext, ok := imageTypes[ct]
	if !ok {
		return "", ErrUnsupportedImage
	}

	key := path.Join(i.prefix, i.newKey()+ext)
	if err := i.disk.Put(ctx, key, br, ct); err != nil {
		return "", err
	}
	return i.disk.URL(key), nil
}
