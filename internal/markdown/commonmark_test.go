// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatBlog, false},
		{"blog", FormatBlog, false},
		{" Blog ", FormatBlog, false},
		{"commonmark", FormatCommonMark, false},
		{"GFM", FormatCommonMark, false},
		{"asciidoc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCommonMark(t *testing.T) {
	src := "---\ntitle: ignored\n---\n# Hi\n\n~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	got, err := CommonMark(src)
	if err != nil {
		t.Fatalf("CommonMark: %v", err)
	}
	for _, want := range []string{`<h1 id="hi">Hi</h1>`, "<del>gone</del>", "<table>"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "title: ignored") {
		t.Errorf("front matter leaked into output:\n%s", got)
	}
}

func TestConvert(t *testing.T) {
	blog, err := Convert(FormatBlog, "# Title")
	if err != nil || blog != "<h1>Title</h1>" {
		t.Errorf("Convert(blog) = (%q, %v)", blog, err)
	}

	cm, err := Convert(FormatCommonMark, "# Title")
	if err != nil || !strings.Contains(cm, `<h1 id="title">Title</h1>`) {
		t.Errorf("Convert(commonmark) = (%q, %v)", cm, err)
	}

	if _, err := Convert("rst", "x"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Convert(rst) error = %v, want ErrUnknownFormat", err)
	}
}
