package deckservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/models"
)

// AssetsDir is the store subdirectory holding uploaded images.
const AssetsDir = "assets"

// MaxAssetSize caps a single asset.
const MaxAssetSize = 10 << 20

var (
	mimeToExt = map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/gif":     ".gif",
		"image/webp":    ".webp",
		"image/svg+xml": ".svg",
	}

	assetNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*\.(png|jpg|jpeg|gif|webp|svg)$`)
)

// Asset describes a stored image.
type Asset struct {
	ID          string `json:"id"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// SaveAsset stores an image under a generated id. The extension of filename
// must match the content.
func (s *Service) SaveAsset(_ context.Context, filename string, data []byte) (*Asset, error) {
	ext := strings.ToLower(path.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if len(data) > MaxAssetSize {
		return nil, fmt.Errorf("%w: asset too large: %d bytes (max %d)", apperr.ErrInvalid, len(data), MaxAssetSize)
	}
	ct, err := sniffImage(data, ext)
	if err != nil {
		return nil, err
	}

	id := s.ids.New("asset") + ext
	if err := s.store.Write(path.Join(AssetsDir, id), data); err != nil {
		return nil, err
	}
	return &Asset{ID: id, Size: len(data), ContentType: ct, URL: "/api/assets/" + id}, nil
}

// SaveDataURI stores a base64 data URI as an asset.
func (s *Service) SaveDataURI(ctx context.Context, uri string) (*Asset, error) {
	data, ext, err := decodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return s.SaveAsset(ctx, "upload"+ext, data)
}

// ReadAsset returns a stored asset and its content type.
func (s *Service) ReadAsset(_ context.Context, id string) ([]byte, string, error) {
	if !assetNameRe.MatchString(id) {
		return nil, "", fmt.Errorf("%w: invalid asset id %q", apperr.ErrInvalid, id)
	}
	data, err := s.store.Read(path.Join(AssetsDir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}
	ct := "application/octet-stream"
	for mime, ext := range mimeToExt {
		if strings.HasSuffix(id, ext) {
			ct = mime
		}
	}
	return data, ct, nil
}

// AttachImage appends an image visual for a stored asset to one slide.
func (s *Service) AttachImage(ctx context.Context, id, slideID, assetID string, placement models.Placement, caption string) (*DeckDetail, error) {
	if _, _, err := s.ReadAsset(ctx, assetID); err != nil {
		return nil, err
	}
	if placement == "" {
		placement = models.PlacementRight
	}
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i, err := slideIndex(deck, slideID)
		if err != nil {
			return err
		}
		v := models.VisualReference{Kind: models.VisualImage, AssetID: assetID, Placement: placement, Caption: caption}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
		}
		deck.Slides[i].Visuals = append(deck.Slides[i].Visuals, v)
		return nil
	})
}

// decodeDataURI parses a data:<mediatype>;base64,<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URI", apperr.ErrInvalid)
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: data URI missing comma separator", apperr.ErrInvalid)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("%w: only base64 data URIs are supported", apperr.ErrInvalid)
	}
	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	ext := mimeToExt[mime]
	if ext == "" {
		return nil, "", fmt.Errorf("%w: unsupported MIME type %q", apperr.ErrInvalid, mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("%w: invalid base64 data", apperr.ErrInvalid)
		}
	}
	return data, ext, nil
}

// sniffImage checks that data is the image type ext claims and returns its
// MIME type.
func sniffImage(data []byte, ext string) (string, error) {
	if ext == ".svg" {
		head := data[:min(len(data), 1024)]
		if !bytes.Contains(head, []byte("<svg")) {
			return "", fmt.Errorf("%w: content is not an SVG", apperr.ErrInvalid)
		}
		return "image/svg+xml", nil
	}
	detected := strings.Split(http.DetectContentType(data), ";")[0]
	if want, ok := mimeToExt[detected]; !ok || want != ext {
		return "", fmt.Errorf("%w: content does not match extension %q (detected %s)", apperr.ErrInvalid, ext, detected)
	}
	return detected, nil
}
