package youtube

import "testing"

func TestVideoID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		id   string
		ok   bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch_bare_host", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch_mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch_extra_params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"short_link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short_link_query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed_trailing", "https://www.youtube.com/embed/dQw4w9WgXcQ/extra", "dQw4w9WgXcQ", true},

		{"id_too_short", "https://www.youtube.com/watch?v=short", "", false},
		{"id_too_long", "https://www.youtube.com/watch?v=dQw4w9WgXcQQ", "", false},
		{"id_bad_chars", "https://www.youtube.com/watch?v=dQw4w9WgXc!", "", false},
		{"no_v_param", "https://www.youtube.com/watch?list=PL123", "", false},
		{"home_page", "https://www.youtube.com/", "", false},
		{"channel_handle", "https://www.youtube.com/@somecreator", "", false},
		{"channel_path", "https://www.youtube.com/channel/UC12345678901234567890", "", false},
		{"results_page", "https://www.youtube.com/results?search_query=cats", "", false},
		{"other_host", "https://vimeo.com/watch?v=dQw4w9WgXcQ", "", false},
		{"lookalike_host", "https://notyoutube.com/watch?v=dQw4w9WgXcQ", "", false},
		{"not_a_url", "::::", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := VideoID(tc.url)
			if ok != tc.ok || id != tc.id {
				t.Fatalf("VideoID(%q) = (%q, %v), want (%q, %v)", tc.url, id, ok, tc.id, tc.ok)
			}
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	thumb, ok := ThumbnailURL("https://youtu.be/dQw4w9WgXcQ")
	if !ok {
		t.Fatalf("expected thumbnail for valid short link")
	}
	want := "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"
	if thumb != want {
		t.Fatalf("thumbnail: got %q want %q", thumb, want)
	}

	if _, ok := ThumbnailURL("https://www.youtube.com/@somecreator"); ok {
		t.Fatalf("channel pages must not produce a thumbnail")
	}
}

func TestIsChannelURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/@somecreator", true},
		{"https://www.youtube.com/channel/UCabc", true},
		{"https://www.youtube.com/c/SomeCreator", true},
		{"https://www.youtube.com/user/legacyname", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"https://www.youtube.com/", false},
		{"https://example.com/@somecreator", false},
		{"::::", false},
	}
	for _, tc := range cases {
		if got := IsChannelURL(tc.url); got != tc.want {
			t.Fatalf("IsChannelURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
