package report

import (
	"bytes"
	"html/template"

	"billsplit/internal/core"
	"billsplit/web"
)

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
	"date":   core.DisplayDate,
}

var (
	splitTmpl = template.Must(template.New("split.html").
			Funcs(templateFuncs).
			ParseFS(web.TemplatesFS, "templates/split.html"))
	indexTmpl = template.Must(template.New("index.html").
			Funcs(templateFuncs).
			ParseFS(web.TemplatesFS, "templates/index.html"))
)

// SplitHTML renders the per-participant card view of a computed split.
func SplitHTML(result core.SplitResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := splitTmpl.ExecuteTemplate(&buf, "split.html", result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type indexPage struct {
	Bills []core.Bill
}

// IndexHTML renders the bill overview page.
func IndexHTML(bills []core.Bill) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTmpl.ExecuteTemplate(&buf, "index.html", indexPage{Bills: bills}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
