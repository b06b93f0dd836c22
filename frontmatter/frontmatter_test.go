package frontmatter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const postSource = `---
title: Async Rust in Practice
date: 2025-02-25 10:00:00 +0800
categories: [Blogging, Rust]
tags: [async, tokio]
pin: true
---

Futures do nothing unless polled.
`

func TestParsePost(t *testing.T) {
	meta, body, err := Parse([]byte(postSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Title != "Async Rust in Practice" {
		t.Errorf("Title = %q, want %q", meta.Title, "Async Rust in Practice")
	}
	want := time.Date(2025, 2, 25, 2, 0, 0, 0, time.UTC)
	if !meta.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", meta.Date, want)
	}
	if _, off := meta.Date.Zone(); off != 8*3600 {
		t.Errorf("Date offset = %d, want %d", off, 8*3600)
	}
	if !reflect.DeepEqual(meta.Categories, []string{"Blogging", "Rust"}) {
		t.Errorf("Categories = %v", meta.Categories)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"async", "tokio"}) {
		t.Errorf("Tags = %v", meta.Tags)
	}
	if got, ok := meta.Options["pin"].(bool); !ok || !got {
		t.Errorf("Options[pin] = %v, want true", meta.Options["pin"])
	}
	if strings.TrimSpace(string(body)) != "Futures do nothing unless polled." {
		t.Errorf("body = %q", body)
	}
}

func TestParseStaticPageOptions(t *testing.T) {
	src := "---\nicon: fas fa-info-circle\norder: 4\n---\n\nAbout me.\n"
	meta, _, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Title != "" {
		t.Errorf("Title = %q, want empty", meta.Title)
	}
	if meta.HasDate() {
		t.Errorf("HasDate = true, want false")
	}
	if meta.Options["icon"] != "fas fa-info-circle" {
		t.Errorf("Options[icon] = %v", meta.Options["icon"])
	}
	if meta.Options["order"] != 4 {
		t.Errorf("Options[order] = %#v, want 4", meta.Options["order"])
	}
}

func TestParseScalarList(t *testing.T) {
	src := "---\ntitle: One\ntags: go\ncategories:\n  - Notes\n---\nbody\n"
	meta, _, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"go"}) {
		t.Errorf("Tags = %v, want [go]", meta.Tags)
	}
	if !reflect.DeepEqual(meta.Categories, []string{"Notes"}) {
		t.Errorf("Categories = %v, want [Notes]", meta.Categories)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no delimiter", "title: nope\n\nbody\n"},
		{"plain markdown", "# Heading\n\nSome text.\n"},
		{"leading blank lines", "\n\n---\ntitle: A\n---\nbody\n"},
		{"leading space", " ---\ntitle: A\n---\nbody\n"},
		{"not a mapping", "---\n- a\n- b\n---\nbody\n"},
		{"title is a list", "---\ntitle: [a, b]\n---\nbody\n"},
		{"tags is a mapping", "---\ntitle: x\ntags:\n  a: b\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrMalformedFrontMatter) {
				t.Errorf("Parse(%q) error = %v, want ErrMalformedFrontMatter", tt.input, err)
			}
		})
	}
}

func TestParseByteOrderMark(t *testing.T) {
	meta, body, err := Parse([]byte("\ufeff---\ntitle: A\n---\nbody\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Title != "A" || strings.TrimSpace(string(body)) != "body" {
		t.Errorf("Parse = %+v, %q", meta, body)
	}
}

func TestParseInvalidDate(t *testing.T) {
	tests := []string{
		"yesterday",
		"2025-02-25",
		"2025-02-25 10:00:00",
		"25/02/2025 10:00 +0800",
	}
	for _, d := range tests {
		src := "---\ntitle: x\ndate: " + d + "\n---\nbody\n"
		_, _, err := Parse([]byte(src))
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("date %q: error = %v, want ErrInvalidDate", d, err)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)
	tests := []string{
		"2025-02-20 17:30:00 +0800",
		"2025-02-20 17:30 +0800",
		"2025-02-20T09:30:00Z",
		"2025-02-20T17:30:00+08:00",
		"2025-02-20T17:30:00+0800",
		"2025-02-20 09:30:00 Z",
	}
	for _, s := range tests {
		got, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	loc := time.FixedZone("", 8*3600)
	tests := []Metadata{
		{
			Title:      "Async Rust in Practice",
			Date:       time.Date(2025, 2, 25, 10, 0, 0, 0, loc),
			Categories: []string{"Blogging", "Rust"},
			Tags:       []string{"async", "tokio"},
		},
		{
			Options: map[string]any{"icon": "fas fa-info-circle", "order": 4},
		},
		{
			Title:   "2025",
			Tags:    []string{"true", "null", "3.14"},
			Options: map[string]any{"pin": true, "math": false, "image": "/assets/cover.png"},
		},
		{
			Title: "Colons: and # hashes",
			Date:  time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			Title: "Fractional seconds",
			Date:  time.Date(2025, 2, 25, 10, 0, 0, 500000000, loc),
		},
		{
			Title: "Nanoseconds",
			Date:  time.Date(2025, 2, 25, 10, 0, 0, 123456789, time.UTC),
		},
		{
			Options: map[string]any{
				"ratio":   1.0,
				"scale":   0.25,
				"huge":    1e21,
				"weights": []any{2.0, 3, "x"},
				"image":   map[string]any{"width": 640, "aspect": 1.5, "zoom": 2.0},
			},
		},
	}
	for _, want := range tests {
		out, err := Serialize(want, []byte("\nbody text\n"))
		if err != nil {
			t.Fatalf("Serialize(%+v) failed: %v", want, err)
		}
		got, body, err := Parse(out)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", out, err)
		}
		if !got.Date.Equal(want.Date) {
			t.Errorf("Date = %v, want %v", got.Date, want.Date)
		}
		got.Date, want.Date = time.Time{}, time.Time{}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
		if strings.TrimSpace(string(body)) != "body text" {
			t.Errorf("body = %q", body)
		}
	}
}

func TestSerializeKeepsFloatForm(t *testing.T) {
	src := "---\nratio: 1.0\n---\n"
	meta, _, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := Serialize(meta, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	again, _, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", out, err)
	}
	if v, ok := again.Options["ratio"].(float64); !ok || v != 1 {
		t.Errorf("Options[ratio] = %#v, want float64(1)", again.Options["ratio"])
	}
}

func TestSerializeRejectsReservedOption(t *testing.T) {
	_, err := Serialize(Metadata{Options: map[string]any{"title": "x"}}, nil)
	if err == nil {
		t.Fatal("expected error for option shadowing title")
	}
}

func TestSerializeStableOrder(t *testing.T) {
	meta := Metadata{
		Title:   "Stable",
		Options: map[string]any{"zeta": 1, "alpha": 2, "mid": 3},
	}
	first, err := Serialize(meta, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Serialize(meta, nil)
		if string(again) != string(first) {
			t.Fatalf("Serialize not stable:\n%s\nvs\n%s", first, again)
		}
	}
	s := string(first)
	if !(strings.Index(s, "title") < strings.Index(s, "alpha") &&
		strings.Index(s, "alpha") < strings.Index(s, "mid") &&
		strings.Index(s, "mid") < strings.Index(s, "zeta")) {
		t.Errorf("unexpected key order:\n%s", s)
	}
}
