package sources

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		url     string
		kind    Kind
		paperID string
	}{
		{"https://arxiv.org/pdf/2401.01234.pdf", KindPaper, "2401.01234"},
		{"https://arxiv.org/pdf/2401.01234v2", KindPaper, "2401.01234v2"},
		{"https://arxiv.org/abs/1234.5678", KindPaper, "1234.5678"},
		{"https://arxiv.org/html/2401.01234v1", KindPaper, "2401.01234v1"},
		{"https://x.com/user/status/1", KindSocialPost, ""},
		{"https://twitter.com/user/status/1", KindSocialPost, ""},
		{"https://github.com/golang/go", KindRepository, ""},
		{"https://github.com/golang", KindRepository, ""},
		{"https://github.com", KindRepository, ""},
		{"https://arxiv.org/list/cs.PL/recent", KindDocument, ""},
		{"https://example.com/post.html", KindDocument, ""},
		{"http://github.com/golang/go", KindDocument, ""},
		{"", KindDocument, ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := Classify(tt.url)
			if got.Kind != tt.kind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.url, got.Kind, tt.kind)
			}
			if got.PaperID != tt.paperID {
				t.Errorf("Classify(%q).PaperID = %q, want %q", tt.url, got.PaperID, tt.paperID)
			}
			if got.URL != tt.url {
				t.Errorf("Classify(%q).URL = %q", tt.url, got.URL)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindPaper.String() != "paper" || KindDocument.String() != "document" {
		t.Errorf("unexpected kind names: %s %s", KindPaper, KindDocument)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"runes", "héllo wörld", 7, "héllo w"},
		{"cjk", "日本語のテキスト", 3, "日本語"},
		{"disabled", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestRepoFromURL(t *testing.T) {
	owner, repo, err := RepoFromURL("https://github.com/rust-lang/rust.git?tab=readme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "rust-lang" || repo != "rust" {
		t.Errorf("got %s/%s", owner, repo)
	}

	if _, _, err := RepoFromURL("https://github.com/rust-lang"); err == nil {
		t.Error("expected error for missing repo segment")
	}
}
