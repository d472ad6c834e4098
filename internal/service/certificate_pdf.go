package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// CertificateFields 三段由操作者确认的自由文本；语义正确性不在本层校验
type CertificateFields struct {
	NameText       string
	CompletionLine string
	CompletionDate string
}

// TemplateRenderer 把文字绘制到模板副本上并序列化为新的 PDF，模板本体不被修改
type TemplateRenderer interface {
	Render(template []byte, fields CertificateFields) ([]byte, error)
}

type pdfTemplateRenderer struct{}

func NewPDFTemplateRenderer() TemplateRenderer {
	return pdfTemplateRenderer{}
}

func (pdfTemplateRenderer) Render(template []byte, fields CertificateFields) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(template)
	tplID := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		return nil, fmt.Errorf("import template page: %v", pdf.Error())
	}

	box := imp.GetPageSizes()[1]["/MediaBox"]
	// 模板缺页或无 MediaBox 时 box 为空 map
	pageW, pageH := box["w"], box["h"]
	if pageW <= 0 || pageH <= 0 {
		return nil, fmt.Errorf("template page has no usable media box")
	}

	orientation := "P"
	if pageW > pageH {
		orientation = "L"
	}
	pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: pageW, Ht: pageH})
	imp.UseImportedTemplate(pdf, tplID, 0, 0, pageW, pageH)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTextColor(0, 0, 0)

	// 姓名：粗体大字，按实测宽度居中
	name := tr(fields.NameText)
	pdf.SetFont("Helvetica", "B", certNameFontSize)
	nameW := pdf.GetStringWidth(name)
	pdf.Text(CenterX(pageW, nameW), pageH-pageH*certNameYRatio, name)

	// 课程描述：按条宽折行，逐行居中，整块围绕锚点垂直居中
	pdf.SetFont("Helvetica", "", certLineFontSize)
	lines := WrapByWidth(tr(fields.CompletionLine), pageW*certBarWidthRatio, func(s string) float64 {
		return pdf.GetStringWidth(s)
	})
	lineY := BlockTopY(pageH*certLineAnchorYRatio, certLineSpacing, len(lines))
	for _, line := range lines {
		lineW := pdf.GetStringWidth(line)
		pdf.Text(CenterX(pageW, lineW), pageH-lineY, line)
		lineY -= certLineSpacing
	}

	// 日期：小字号，固定位置
	pdf.SetFont("Helvetica", "", certDateFontSize)
	pdf.Text(pageW*certDateXRatio, pageH-pageH*certDateYRatio, tr(fields.CompletionDate))

	if pdf.Err() {
		return nil, fmt.Errorf("draw certificate text: %v", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
