package objectstore

import "testing"

func TestThumbnailKey(t *testing.T) {
	cases := []struct {
		key   string
		label string
		want  string
	}{
		{"gallery-image/u1/1712000000-abc123.webp", "small", "gallery-image-thumb-small/u1/1712000000-abc123.webp"},
		{"background/u2/1712000000-def456.webp", "large", "background-thumb-large/u2/1712000000-def456.webp"},
		{"no-slash-key", "small", "no-slash-key"},
	}

	for _, tc := range cases {
		got := ThumbnailKey(tc.key, tc.label)
		if got != tc.want {
			t.Fatalf("ThumbnailKey(%q, %q) = %q, want %q", tc.key, tc.label, got, tc.want)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	c := &Client{bucket: "raikan-media", publicDomain: "https://cdn.example.com"}

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"custom domain form", "https://cdn.example.com/gallery-image/u1/1712-abc.webp", "gallery-image/u1/1712-abc.webp"},
		{"endpoint form", "https://s3.example.com/raikan-media/qr-code/u1/1712-def.png", "qr-code/u1/1712-def.png"},
		{"empty url", "", ""},
		{"key segment matching the bucket name", "https://cdn.example.com/raikan-media/u1/1712-abc.webp", "raikan-media/u1/1712-abc.webp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.KeyFromURL(tc.url)
			if got != tc.want {
				t.Fatalf("KeyFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestPublicURL_CustomDomain(t *testing.T) {
	c := &Client{bucket: "raikan-media", publicDomain: "https://cdn.example.com"}

	got := c.PublicURL("gallery-image/u1/1712-abc.webp")
	want := "https://cdn.example.com/gallery-image/u1/1712-abc.webp"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestKeyFromURL_RoundTripsPublicURL(t *testing.T) {
	c := &Client{bucket: "raikan-media", publicDomain: "https://cdn.example.com"}

	key := "background/u9/1712000000-cafe.webp"
	if got := c.KeyFromURL(c.PublicURL(key)); got != key {
		t.Fatalf("round trip gave %q, want %q", got, key)
	}
}
