package seamap

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocloud.dev/blob/memblob"
)

func memStore() *Store {
	return &Store{Bucket: memblob.OpenBucket(nil), MaxRetries: 1}
}

func TestStoreWriteRaster(t *testing.T) {
	ctx := context.Background()
	s := memStore()
	defer s.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 204})
	r := &Raster{Image: img, BBox: FallbackBBox, Resolution: 2}

	const key = "temperature-images/temperature_x.png"
	if ok, err := s.Exists(ctx, key); err != nil || ok {
		t.Fatalf("exists before write: %v %v", ok, err)
	}
	if err := s.WriteRaster(ctx, key, r); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("exists after write: %v %v", ok, err)
	}

	b, err := s.Bucket.ReadAll(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if have := color.NRGBAModel.Convert(decoded.At(1, 0)).(color.NRGBA); have != (color.NRGBA{R: 10, G: 20, B: 30, A: 204}) {
		t.Errorf("pixel: %v", have)
	}
	if _, _, _, a := decoded.At(0, 0).RGBA(); a != 0 {
		t.Errorf("pixel (0, 0) should be transparent")
	}
}

func TestStoreWriteMetadata(t *testing.T) {
	ctx := context.Background()
	s := memStore()
	defer s.Close()

	scale, err := ParseColorScale("0:#004000,36:#191970")
	if err != nil {
		t.Fatal(err)
	}
	info := DefaultParameterInfo[Salinity]
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMetadata(info, GridSpec{BBox: FallbackBBox, Resolution: 1200}, scale, []string{"t1", "t2"}, 2, now)
	if err := s.WriteMetadata(ctx, info.MetadataKey(), m); err != nil {
		t.Fatal(err)
	}
	b, err := s.Bucket.ReadAll(ctx, "salinity-images/metadata.json")
	if err != nil {
		t.Fatal(err)
	}
	var have map[string]interface{}
	if err := json.Unmarshal(b, &have); err != nil {
		t.Fatal(err)
	}
	checks := map[string]interface{}{
		"parameter":      "salinity",
		"parameter_name": "salinity",
		"unit":           "PSU",
		"total_images":   2.,
		"resolution":     1200.,
		"generated_at":   "2025-06-01T12:00:00Z",
	}
	for k, want := range checks {
		if have[k] != want {
			t.Errorf("%s: want %v, have %v", k, want, have[k])
		}
	}
	if bbox := have["bbox"].([]interface{}); len(bbox) != 4 || bbox[0] != 7.5 {
		t.Errorf("bbox: %v", bbox)
	}
	if cm := have["colormap"].([]interface{}); len(cm) != 2 {
		t.Errorf("colormap: %v", cm)
	}
}

func TestStoreClean(t *testing.T) {
	ctx := context.Background()
	s := memStore()
	defer s.Close()
	for _, key := range []string{"a/x.png", "a/y.png", "a/metadata.json", "b/z.png"} {
		if err := s.Bucket.WriteAll(ctx, key, []byte("x"), nil); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Clean(ctx, "a/")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("want 2 deleted, have %d", n)
	}
	for key, want := range map[string]bool{"a/x.png": false, "a/metadata.json": true, "b/z.png": true} {
		if ok, _ := s.Exists(ctx, key); ok != want {
			t.Errorf("%s: exists %v, want %v", key, ok, want)
		}
	}
}

func TestOpenStoreDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "seamap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "images")
	s, err := OpenStore(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Bucket.WriteAll(context.Background(), "current-magnitude-images/a.png", []byte("x"), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "current-magnitude-images", "a.png")); err != nil {
		t.Error(err)
	}
}

func TestFileName(t *testing.T) {
	info := DefaultParameterInfo[Current]
	if have, want := info.FileName("2025-06-01T12:00:00+00:00"), "current_magnitude_2025-06-01T12-00-00plus00-00.png"; have != want {
		t.Errorf("want %s, have %s", want, have)
	}
	if have, want := info.RasterKey("t"), "current-magnitude-images/current_magnitude_t.png"; have != want {
		t.Errorf("want %s, have %s", want, have)
	}
}
