package service

import "strings"

// 版式常量按模板底图调校，单位 pt，坐标原点在页面左下角。
// 比例值均相对页面宽/高。
const (
	certNameFontSize = 28.0
	certLineFontSize = 16.0
	certDateFontSize = 12.0

	// 蓝色文字条约占页宽的 78%
	certBarWidthRatio = 0.78

	// 姓名基线位置（"of Completion" 下方的空白条）
	certNameYRatio = 0.46

	// 课程描述块的垂直锚点，整块围绕它居中
	certLineAnchorYRatio = 0.24

	// 日期框：左下角的固定位置，不居中
	certDateXRatio = 0.14
	certDateYRatio = 0.12

	// 行距 = 字号 + 3
	certLineSpacing = certLineFontSize + 3
)

// TextMeasurer 返回字符串在既定字体/字号下的渲染宽度（pt）
type TextMeasurer func(text string) float64

// WrapByWidth 按实测渲染宽度折行，只在词边界断开，永不拆词。
// 单词本身超宽时独占一行，超宽照画不截断。
func WrapByWidth(text string, maxWidth float64, measure TextMeasurer) []string {
	words := strings.Split(text, " ")
	var lines []string
	current := ""

	for _, word := range words {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if measure(test) <= maxWidth {
			current = test
		} else {
			if current != "" {
				lines = append(lines, current)
			}
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// CenterX 依据实测渲染宽度水平居中
func CenterX(pageWidth, textWidth float64) float64 {
	return (pageWidth - textWidth) / 2
}

// BlockTopY 计算折行块首行的基线 y（自底向上坐标）。
// 整块围绕 anchorY 垂直居中，1 行和 3 行的描述在视觉上都平衡在同一锚点附近。
func BlockTopY(anchorY, lineSpacing float64, lineCount int) float64 {
	span := lineCount - 1
	if span == 0 {
		span = 1
	}
	blockHeight := lineSpacing * float64(span)
	return anchorY + blockHeight/2
}
