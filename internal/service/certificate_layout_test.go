package service

import (
	"strings"
	"testing"
)

// 每字符 10pt 的线性测宽，足以验证折行与居中的几何性质
func fixedWidth(text string) float64 {
	return float64(len(text)) * 10
}

func TestWrapByWidthSingleLine(t *testing.T) {
	lines := WrapByWidth("short text", 500, fixedWidth)
	if len(lines) != 1 || lines[0] != "short text" {
		t.Errorf("got %v, want single line", lines)
	}
}

func TestWrapByWidthBreaksAtWordBoundary(t *testing.T) {
	// 每词 4 字符 = 40pt；上限 100pt 一行最多放两个词
	text := "aaaa bbbb cccc dddd eeee"
	lines := WrapByWidth(text, 100, fixedWidth)

	for _, line := range lines {
		if fixedWidth(line) > 100 {
			t.Errorf("line %q exceeds max width", line)
		}
		for _, word := range strings.Split(line, " ") {
			if !strings.Contains(text, word) {
				t.Errorf("line %q contains split word %q", line, word)
			}
		}
	}
	if got := strings.Join(lines, " "); got != text {
		t.Errorf("rejoined = %q, want original text", got)
	}
}

func TestWrapByWidthOversizeWordOwnLine(t *testing.T) {
	lines := WrapByWidth("hi superlongunbreakableword hi", 100, fixedWidth)

	found := false
	for _, line := range lines {
		if line == "superlongunbreakableword" {
			found = true
		}
	}
	if !found {
		t.Errorf("oversize word must sit alone on its line, got %v", lines)
	}
}

func TestWrapByWidthEmptyString(t *testing.T) {
	lines := WrapByWidth("", 100, fixedWidth)
	if len(lines) != 0 {
		t.Errorf("got %v, want no lines", lines)
	}
}

func TestCenterXSymmetry(t *testing.T) {
	pageW := 792.0
	for _, textW := range []float64{0, 100, 300, 792} {
		x := CenterX(pageW, textW)
		left := x
		right := pageW - (x + textW)
		if left != right {
			t.Errorf("textW %.0f: left margin %.2f != right margin %.2f", textW, left, right)
		}
	}
}

func TestCenterXShortVsLongName(t *testing.T) {
	pageW := 792.0
	short := CenterX(pageW, fixedWidth("Al"))
	long := CenterX(pageW, fixedWidth("Bartholomew Featherstonehaugh"))
	if short <= long {
		t.Errorf("shorter text should start further from the left edge: short=%.2f long=%.2f", short, long)
	}
}

func TestBlockTopYSingleLine(t *testing.T) {
	anchor := 190.0
	got := BlockTopY(anchor, certLineSpacing, 1)
	want := anchor + certLineSpacing/2
	if got != want {
		t.Errorf("BlockTopY = %.2f, want %.2f", got, want)
	}
}

func TestBlockTopYMultiLineCentersOnAnchor(t *testing.T) {
	anchor := 190.0
	spacing := 19.0
	for _, lineCount := range []int{2, 3, 5} {
		top := BlockTopY(anchor, spacing, lineCount)
		bottom := top - spacing*float64(lineCount-1)
		mid := (top + bottom) / 2
		if mid != anchor {
			t.Errorf("%d lines: block midpoint %.2f, want anchor %.2f", lineCount, mid, anchor)
		}
	}
}

func TestBlockTopYLongerBlockStartsHigher(t *testing.T) {
	anchor := 190.0
	oneLine := BlockTopY(anchor, certLineSpacing, 1)
	threeLines := BlockTopY(anchor, certLineSpacing, 3)
	if threeLines <= oneLine {
		t.Errorf("3-line block should start higher: 1-line=%.2f 3-line=%.2f", oneLine, threeLines)
	}
}
