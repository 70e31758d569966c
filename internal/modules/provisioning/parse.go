package provisioning

import (
	"encoding/json"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"roflexi/internal/domain"
)

const defaultImageExt = ".jpg"

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".heic": true, ".heif": true,
}

var mimeExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// parseLocation decodes the location form value. Absent, null or
// undecodable input yields nil; decodable input of the wrong shape yields a
// point that fails validation.
func parseLocation(raw string) *domain.GeoPoint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return nil
	}
	p := toGeoPoint(v)
	return &p
}

// parseServiceArea decodes the serviceArea form value. Absent input yields
// nil; anything that is not an array yields an empty slice.
func parseServiceArea(raw string) []domain.GeoPoint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []domain.GeoPoint{}
	}
	points := make([]domain.GeoPoint, 0, len(items))
	for _, it := range items {
		points = append(points, toGeoPoint(it))
	}
	return points
}

func toGeoPoint(v any) domain.GeoPoint {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.GeoPoint{Lat: math.NaN(), Lng: math.NaN()}
	}
	return domain.GeoPoint{Lat: coerceNumber(obj, "lat"), Lng: coerceNumber(obj, "lng")}
}

// coerceNumber reads obj[key] as a number, accepting numeric strings.
func coerceNumber(obj map[string]any, key string) float64 {
	v, ok := obj[key]
	if !ok {
		return math.NaN()
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// parseTags accepts a JSON array of strings, or falls back to a comma
// separated list.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return strings.Split(raw, ",")
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// normalizeTags trims, drops blanks and removes duplicates keeping the
// first occurrence.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// imageExt picks the stored extension. Only known image extensions are
// kept; anything else is derived from the declared MIME type, falling back
// to ".jpg".
func imageExt(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if imageExts[ext] {
		return ext
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := mimeExts[mt]; ok {
			return ext
		}
	}
	return defaultImageExt
}

// acceptableImage reports whether the upload looks like a supported image,
// by MIME type or by extension.
func acceptableImage(img *Image) bool {
	if img == nil || len(img.Data) == 0 {
		return false
	}
	if mt, _, err := mime.ParseMediaType(img.ContentType); err == nil && strings.HasPrefix(mt, "image/") {
		return true
	}
	return imageExts[strings.ToLower(filepath.Ext(img.Filename))]
}

func validateImage(img *Image) string {
	if img == nil {
		return msgMissingImage
	}
	if !acceptableImage(img) {
		return msgInvalidImage
	}
	return ""
}
