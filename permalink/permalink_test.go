package permalink

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/memeforge/layout"
)

func sampleState() State {
	return State{
		Img: "https://example.com/cat.png?size=large&v=2",
		Boxes: []layout.TextBox{
			{
				ID: 3, Text: "שלום עולם\nline two <b>&", X: 0.25, Y: 0.75,
				FontSize: 64, Color: "#ffcc00", StrokeColor: "rgba(0,0,0,0.5)", StrokeWidth: 7,
				FontFamily: `"Comic Sans MS", cursive`, Align: layout.AlignRight,
				Bold: true, Italic: true, Uppercase: true, Shadow: true,
			},
			{ID: 4, Text: "مرحبا 😀", X: 0.5, Y: 0.5, FontSize: 18, Color: "white", Align: layout.AlignLeft},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	want := sampleState()
	token, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatal(err)
	}
	if again != token {
		t.Fatalf("encode(decode(token)) changed the token")
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	token, err := Encode(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(token, "+/=?&# ") {
		t.Fatalf("token carries raw URL metacharacters: %q", token)
	}
}

func TestDecodeAcceptsUnescapedAndURLAlphabet(t *testing.T) {
	token, err := Encode(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := url.QueryUnescape(token)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(raw); err != nil {
		t.Fatalf("unescaped token: %v", err)
	}
	urlAlphabet := strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(raw), "=")
	if _, err := Decode(urlAlphabet); err != nil {
		t.Fatalf("url alphabet token: %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"%%%",
		"not base64 at all!",
		"bnVsbA==",             // null
		"eyJib3hlcyI6W119",     // {"boxes":[]} 缺少 img
		"eyJpbWciOiAxfQ==",     // {"img": 1}
		"eyJpbWciOiJhIiwiYm94", // 截断
	} {
		if _, err := Decode(token); !errors.Is(err, ErrDecodeFailed) {
			t.Errorf("Decode(%q) = %v, want ErrDecodeFailed", token, err)
		}
	}
}

func TestLinkAndFromURL(t *testing.T) {
	want := sampleState()
	token, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	link := Link("https://memes.example/editor/?m=old#frag", token)
	if !strings.HasPrefix(link, "https://memes.example/editor/?m=") {
		t.Fatalf("link = %q", link)
	}
	got, ok, err := FromURL(link)
	if err != nil || !ok {
		t.Fatalf("FromURL: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FromURL mismatch (-want +got):\n%s", diff)
	}

	if _, ok, err := FromURL("https://memes.example/editor/"); ok || err != nil {
		t.Fatalf("link without token: ok=%v err=%v", ok, err)
	}
}
