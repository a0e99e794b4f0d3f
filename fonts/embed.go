package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/dejavu/dejavusans"
	"github.com/go-fonts/dejavu/dejavusansbold"
	"github.com/go-fonts/dejavu/dejavusansboldoblique"
	"github.com/go-fonts/dejavu/dejavusansoblique"
	"github.com/go-fonts/dejavu/dejavuserif"
	"github.com/go-fonts/dejavu/dejavuserifbold"
	"github.com/go-fonts/dejavu/dejavuserifbolditalic"
	"github.com/go-fonts/dejavu/dejavuserifitalic"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/liberation/liberationmonobold"
	"github.com/go-fonts/liberation/liberationmonobolditalic"
	"github.com/go-fonts/liberation/liberationmonoitalic"
	"github.com/go-fonts/liberation/liberationmonoregular"
	"github.com/go-fonts/liberation/liberationsansbold"
	"github.com/go-fonts/liberation/liberationsansbolditalic"
	"github.com/go-fonts/liberation/liberationsansitalic"
	"github.com/go-fonts/liberation/liberationsansregular"
	"github.com/go-fonts/liberation/liberationserifbold"
	"github.com/go-fonts/liberation/liberationserifbolditalic"
	"github.com/go-fonts/liberation/liberationserifitalic"
	"github.com/go-fonts/liberation/liberationserifregular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体族，顺序为 Regular/Bold/Italic/BoldItalic。
var builtin = map[string][4][]byte{
	"Go":                 {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	"Go Mono":            {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
	"DejaVu Sans":        {dejavusans.TTF, dejavusansbold.TTF, dejavusansoblique.TTF, dejavusansboldoblique.TTF},
	"DejaVu Serif":       {dejavuserif.TTF, dejavuserifbold.TTF, dejavuserifitalic.TTF, dejavuserifbolditalic.TTF},
	"Liberation Sans":    {liberationsansregular.TTF, liberationsansbold.TTF, liberationsansitalic.TTF, liberationsansbolditalic.TTF},
	"Liberation Serif":   {liberationserifregular.TTF, liberationserifbold.TTF, liberationserifitalic.TTF, liberationserifbolditalic.TTF},
	"Liberation Mono":    {liberationmonoregular.TTF, liberationmonobold.TTF, liberationmonoitalic.TTF, liberationmonobolditalic.TTF},
	"Latin Modern Roman": {lmroman10regular.TTF, lmroman10bold.TTF, lmroman10italic.TTF, lmroman10bolditalic.TTF},
}

// 浏览器常见字体名与通用族到内置字体的映射。Liberation 与 Arial/Times/Courier 等宽度兼容。
var builtinAliases = map[string]string{
	"sans-serif":      "DejaVu Sans",
	"system-ui":       "DejaVu Sans",
	"-apple-system":   "DejaVu Sans",
	"ui-sans-serif":   "DejaVu Sans",
	"cursive":         "DejaVu Sans",
	"fantasy":         "DejaVu Sans",
	"serif":           "DejaVu Serif",
	"ui-serif":        "DejaVu Serif",
	"monospace":       "Go Mono",
	"ui-monospace":    "Go Mono",
	"Arial":           "Liberation Sans",
	"Helvetica":       "Liberation Sans",
	"Times New Roman": "Liberation Serif",
	"Times":           "Liberation Serif",
	"Courier New":     "Liberation Mono",
	"Courier":         "Liberation Mono",
	"Computer Modern": "Latin Modern Roman",
}

// Builtins returns the names of the embedded families, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回内置字体的字节数据，path 形如 "embed:DejaVu Sans:bold" 或 "Go"（默认 regular）。
func Load(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "embed:")
	family, styleName, _ := strings.Cut(path, ":")
	style, err := ParseStyle(styleName)
	if err != nil {
		return nil, err
	}
	for name, files := range builtin {
		if strings.EqualFold(name, strings.TrimSpace(family)) {
			return files[style], nil
		}
	}
	return nil, fmt.Errorf("找不到内置字体 %s", path)
}
