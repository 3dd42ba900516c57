package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"furryville_index/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "about", "warp_hall", "the_mall", "mall_map",
	"warp_hall_stall", "mall_stall", "not_found", "error",
}

var templateFuncs = template.FuncMap{
	"mallStallURL": mallStallURL,
}

func mallStallURL(street string, n domain.StallNumber) string {
	return "/stall/the-mall/" + url.PathEscape(street) + "/" + n.String()
}

// PageData is the value every page template executes against.
type PageData struct {
	Title   string
	Message string

	WarpStalls         []domain.WarpHallStall
	MallStalls         []domain.MallStall
	WarpStall          *domain.WarpHallStall
	MallStall          *domain.MallStall
	Reviews            domain.ReviewSummary
	WarpHallStallPages bool
}

// Renderer holds one parsed template set per page, each layered on base.html.
type Renderer struct{ pages map[string]*template.Template }

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "base", data)
}
