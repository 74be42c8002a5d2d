// Package assets stores uploaded images out of band and hands back a stable URL.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"threads/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	JPEGQuality = 82
	WebPQuality = 70

	masterJPEG = "master.jpg"
	masterWebP = "master.webp"
)

// Host uploads an image payload and later destroys it by URL.
type Host interface {
	Upload(ctx context.Context, payload string) (string, error)
	Destroy(ctx context.Context, url string) error
}

// LocalHost keeps images on local disk under dir and serves them from baseURL.
// Every upload is stored as a bounded JPEG master plus a WebP sibling.
type LocalHost struct {
	dir          string
	baseURL      string
	maxBytes     int64
	maxDimension int
}

// NewLocalHost returns a LocalHost writing under dir. baseURL is the public
// prefix the directory is served at, e.g. "/media".
func NewLocalHost(dir, baseURL string, maxUploadSizeMB, maxDimension int) *LocalHost {
	return &LocalHost{
		dir:          dir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxBytes:     int64(maxUploadSizeMB) * 1024 * 1024,
		maxDimension: maxDimension,
	}
}

// Upload decodes payload (a data URL or bare base64), bounds its dimensions,
// writes the encodings and returns the JPEG URL.
func (h *LocalHost) Upload(_ context.Context, payload string) (string, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if int64(len(raw)) > h.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image too large (max %dMB)", h.maxBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(raw)) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	master := resizeToFit(decoded, h.maxDimension, h.maxDimension)

	encodedJPEG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	key := assetKey(encodedJPEG)
	jpegPath := filepath.Join(h.dir, key, masterJPEG)
	if err := writeBytesToFile(jpegPath, encodedJPEG); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(h.dir, key, masterWebP), encodedWebP); err != nil {
		_ = os.RemoveAll(filepath.Join(h.dir, key))
		return "", models.NewInternalError(err)
	}

	return h.baseURL + "/" + key + "/" + masterJPEG, nil
}

// Destroy removes the files behind url. URLs this host did not issue and
// assets that are already gone are not errors.
func (h *LocalHost) Destroy(_ context.Context, url string) error {
	key, ok := h.keyFromURL(url)
	if !ok {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(h.dir, key)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Owns reports whether url was issued by this host.
func (h *LocalHost) Owns(url string) bool {
	_, ok := h.keyFromURL(url)
	return ok
}

func (h *LocalHost) keyFromURL(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, h.baseURL+"/")
	if !ok {
		return "", false
	}
	key, file, ok := strings.Cut(rest, "/")
	if !ok || file != masterJPEG || !isValidKey(key) {
		return "", false
	}
	return key, true
}

// decodePayload accepts "data:image/png;base64,...." or plain base64.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errors.New("Image payload is empty")
	}
	if strings.HasPrefix(payload, "data:") {
		meta, data, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, errors.New("Image must be a base64 data URL")
		}
		payload = data
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("Image payload is not valid base64")
	}
	return raw, nil
}

// assetKey names an upload by a content hash prefix plus a random suffix, so
// two identical uploads never share files and destroying one leaves the other.
func assetKey(content []byte) string {
	sum := sha256.Sum256(content)
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex.EncodeToString(sum[:12]) + nonce[:8]
}

func isValidKey(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, c := range key {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
