package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/gen2brain/webp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
	"userhub/internal/repository/memory"
	"userhub/internal/storage"
)

func newTestFiles(cfg FileConfig) (*fileService, *storage.MemoryStore) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg.Logger = logger

	store := storage.NewMemoryStore()
	svc := NewFileService(memory.NewFileRepository(), store, cfg).(*fileService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	svc.newKey = func() string { return "abcd1234" }
	return svc, store
}

// noisyPNG encodes a random-pixel image with no compression so re-encoding shrinks it.
func noisyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(rng.Intn(4) * 64)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadDocument(t *testing.T) {
	svc, store := newTestFiles(FileConfig{})
	ctx := context.Background()

	res, err := svc.Upload(ctx, UploadInput{
		Data:         []byte("hello"),
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		UserID:       "u-1",
	})
	require.NoError(t, err)
	assert.False(t, res.Compressed)
	assert.Equal(t, "uploads/u-1/1700000000000-abcd1234.txt", res.File.FileName)
	assert.Equal(t, domain.FileTypeDocument, res.File.FileType)
	assert.EqualValues(t, 5, res.File.Size)
	assert.Equal(t, "memory://uploads/u-1/1700000000000-abcd1234.txt", res.File.URL)

	obj, err := store.Download(ctx, res.File.FileName)
	require.NoError(t, err)
	body, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "hello", string(body))
}

func TestUploadRejectsTypeAndSize(t *testing.T) {
	svc, _ := newTestFiles(FileConfig{MaxSize: 4})
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Data: []byte("x"), OriginalName: "a.exe", MimeType: "application/x-msdownload", UserID: "u"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.True(t, strings.HasPrefix(err.Error(), "file type not allowed"))

	_, err = svc.Upload(ctx, UploadInput{Data: []byte("12345"), OriginalName: "a.txt", MimeType: "text/plain", UserID: "u"})
	require.Error(t, err)
	assert.Equal(t, "file exceeds maximum size of 4 bytes", err.Error())
}

func TestUploadCompressesLargePNG(t *testing.T) {
	data := noisyPNG(t)
	svc, _ := newTestFiles(FileConfig{CompressThreshold: 100})

	res, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "pic.png", MimeType: "image/png", UserID: "u-1"})
	require.NoError(t, err)
	assert.True(t, res.Compressed)
	assert.Less(t, res.File.Size, int64(len(data)))
	assert.Equal(t, domain.FileTypeImage, res.File.FileType)
}

// noisyRGBA fills an image with independent random channels.
func noisyRGBA(seed int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	return img
}

// animatedGIF builds an eight frame GIF. Only the first frame survives re-encoding.
func animatedGIF(t *testing.T) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for i := 0; i < 8; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 64, 64), palette())
		rng := rand.New(rand.NewSource(int64(i)))
		for j := range frame.Pix {
			frame.Pix[j] = uint8(rng.Intn(len(frame.Palette)))
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))
	return buf.Bytes()
}

func palette() color.Palette {
	p := make(color.Palette, 0, 256)
	for i := 0; i < 256; i++ {
		p = append(p, color.RGBA{R: uint8(i), G: uint8(255 - i), B: uint8(i * 7), A: 255})
	}
	return p
}

func TestUploadConvertsGIFToJPEG(t *testing.T) {
	data := animatedGIF(t)
	svc, store := newTestFiles(FileConfig{CompressThreshold: 100})

	res, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "anim.gif", MimeType: "image/gif", UserID: "u-1"})
	require.NoError(t, err)
	assert.True(t, res.Compressed)
	assert.Less(t, res.File.Size, int64(len(data)))
	assert.Equal(t, "image/jpeg", res.File.MimeType)

	obj, err := store.Download(context.Background(), res.File.FileName)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	_, format, err := image.DecodeConfig(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestUploadReencodesWebP(t *testing.T) {
	var lossless bytes.Buffer
	require.NoError(t, webp.Encode(&lossless, noisyRGBA(7), webp.Options{Lossless: true}))
	data := lossless.Bytes()
	svc, _ := newTestFiles(FileConfig{CompressThreshold: 100})

	res, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "pic.webp", MimeType: "image/webp", UserID: "u-1"})
	require.NoError(t, err)
	assert.True(t, res.Compressed)
	assert.Less(t, res.File.Size, int64(len(data)))
	assert.Equal(t, "image/webp", res.File.MimeType)
}

func TestCompressImageFormats(t *testing.T) {
	var lossless bytes.Buffer
	require.NoError(t, webp.Encode(&lossless, noisyRGBA(3), webp.Options{Lossless: true}))

	tests := []struct {
		name     string
		data     []byte
		mimeType string
		wantType string
		format   string
	}{
		{"png stays png", noisyPNG(t), "image/png", "image/png", "png"},
		{"webp stays webp", lossless.Bytes(), "image/webp", "image/webp", "webp"},
		{"gif becomes jpeg", animatedGIF(t), "image/gif", "image/jpeg", "jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, outType, err := compressImage(tt.data, tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, outType)
			_, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
		})
	}

	_, _, err := compressImage([]byte("GIF89a broken"), "image/gif")
	require.Error(t, err)
}

func TestUploadKeepsUndecodableImage(t *testing.T) {
	svc, _ := newTestFiles(FileConfig{CompressThreshold: 1})
	data := []byte("not really a jpeg")

	res, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "x.jpg", MimeType: "image/jpeg", UserID: "u-1"})
	require.NoError(t, err)
	assert.False(t, res.Compressed)
	assert.EqualValues(t, len(data), res.File.Size)
}

func TestGetDownloadDelete(t *testing.T) {
	svc, store := newTestFiles(FileConfig{})
	ctx := context.Background()

	res, err := svc.Upload(ctx, UploadInput{Data: []byte("%PDF"), OriginalName: "a.pdf", MimeType: "application/pdf", UserID: "owner"})
	require.NoError(t, err)
	id := res.File.ID

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, got.SignedURL, "expires=")

	file, obj, err := svc.Download(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", file.OriginalName)
	assert.Equal(t, "application/pdf", obj.ContentType)

	files, err := svc.ListByUser(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	err = svc.Delete(ctx, id, "intruder")
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	require.NoError(t, svc.Delete(ctx, id, "owner"))
	_, err = store.Download(ctx, res.File.FileName)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, err = svc.Get(ctx, id)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	err = svc.Delete(ctx, id, "owner")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
