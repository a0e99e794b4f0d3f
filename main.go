package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/memeforge/binding"
	"github.com/ByLCY/memeforge/css"
	"github.com/ByLCY/memeforge/editor"
	"github.com/ByLCY/memeforge/export"
	"github.com/ByLCY/memeforge/fonts"
	"github.com/ByLCY/memeforge/imagesource"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/logging"
	"github.com/ByLCY/memeforge/permalink"
	"github.com/ByLCY/memeforge/renderer/raster"
)

// fontFlags 收集可重复的 -font 参数。
type fontFlags []string

func (f *fontFlags) String() string     { return strings.Join(*f, ",") }
func (f *fontFlags) Set(v string) error { *f = append(*f, v); return nil }

type options struct {
	input     string
	boxesPath string
	top       string
	bottom    string
	color     string
	token     string
	linkBase  string
	output    string
	debug     string
	dataURL   bool
	data      any
	origin    string
	timeout   time.Duration
}

func main() {
	var opts options
	var extraFonts fontFlags
	flag.StringVar(&opts.input, "in", "images/1.png", "底图路径或 URL（支持 http(s)、file://、data:）")
	flag.StringVar(&opts.boxesPath, "boxes", "", "文本框 JSON 文件（TextBox 数组）")
	flag.StringVar(&opts.top, "top", "", "顶部文字，覆盖默认的 TOP TEXT")
	flag.StringVar(&opts.bottom, "bottom", "", "底部文字，覆盖默认的 BOTTOM TEXT")
	flag.StringVar(&opts.color, "color", "", "文字填充色，描边色自动取对比色")
	flag.StringVar(&opts.token, "permalink", "", "分享链接或 ?m= 参数，恢复其中的图片与文本框")
	flag.StringVar(&opts.linkBase, "link", "", "输出指向该地址的分享链接")
	flag.StringVar(&opts.output, "out", export.DefaultFileName, "PNG 输出路径")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&opts.dataURL, "dataurl", false, "同时输出 data:image/png;base64 链接")
	dataJSON := flag.String("data", "", "绑定到文字中 ${...} 的 JSON 数据，以 @ 开头时读取文件")
	flag.Var(&extraFonts, "font", "额外字体 Family[:bold|italic|bolditalic]=path，可重复")
	flag.StringVar(&opts.origin, "origin", "", "页面来源，用于判断跨域图片能否导出")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "图片加载超时")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *dataJSON != "" {
		var err error
		if opts.data, err = loadData(*dataJSON); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	reg := fonts.NewRegistry()
	for _, f := range extraFonts {
		family, style, path, err := fonts.ParseFontFlag(f)
		if err != nil {
			log.Fatalf("无效的 -font 参数 %q: %v", f, err)
		}
		if err := reg.RegisterFile(family, style, path); err != nil {
			log.Fatalf("加载字体 %s 失败: %v", path, err)
		}
	}

	r := raster.NewRendererWithOptions(raster.Options{Fonts: reg})
	out, err := run(context.Background(), opts, r)
	if err != nil {
		log.Fatalf("生成表情包失败: %v", err)
	}
	fmt.Printf("已生成图片：%s\n", out.path)
	if out.link != "" {
		fmt.Printf("分享链接：%s\n", out.link)
	}
	if out.dataURL != "" {
		fmt.Println(out.dataURL)
	}
}

type result struct {
	path    string
	link    string
	dataURL string
}

// run 串联加载、文本框准备、合成与导出。
func run(ctx context.Context, opts options, r *raster.Renderer) (result, error) {
	if r == nil {
		return result{}, fmt.Errorf("renderer 不能为空")
	}
	loader := imagesource.NewLoader(imagesource.Options{Origin: opts.origin})
	s := editor.NewSession(editor.Config{Loader: loader, Compositor: r})
	defer s.Close()

	token := opts.token
	if strings.Contains(token, "?") {
		// 完整的分享链接
		if u, err := url.Parse(token); err == nil {
			token = u.Query().Get(permalink.Param)
		}
	}
	if token == "" || !s.ApplyPermalink(ctx, token) {
		if token != "" {
			logging.Logger().Warn("permalink ignored, falling back to -in", "token", token)
		}
		s.SelectImage(ctx, opts.input)
	}

	if opts.boxesPath != "" {
		boxes, err := readBoxes(opts.boxesPath)
		if err != nil {
			return result{}, err
		}
		replaceBoxes(s, boxes)
	}
	if err := applyCaptionFlags(s, opts); err != nil {
		return result{}, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	if err := s.Handle().Wait(waitCtx); err != nil {
		return result{}, fmt.Errorf("加载底图 %s 失败: %w", s.ActiveImage(), err)
	}
	if err := s.Render(); err != nil {
		return result{}, fmt.Errorf("合成失败: %w", err)
	}

	if opts.debug != "" {
		if err := writeDebug(s.Surface().Layout(), opts.debug); err != nil {
			return result{}, err
		}
	}

	var res result
	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result{}, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	path, err := export.WriteFile(opts.output, s.Surface())
	if err != nil {
		return result{}, fmt.Errorf("导出 PNG 失败: %w", err)
	}
	res.path = path
	if opts.dataURL {
		if res.dataURL, err = export.DataURL(s.Surface()); err != nil {
			return result{}, err
		}
	}
	if opts.linkBase != "" {
		if res.link, err = s.Permalink(opts.linkBase); err != nil {
			return result{}, err
		}
	}
	return res, nil
}

// applyCaptionFlags 应用 -top/-bottom/-color/-data 到当前图片的文本框。
func applyCaptionFlags(s *editor.Session, opts options) error {
	var fill, stroke string
	if opts.color != "" {
		c, err := css.ParseColor(opts.color)
		if err != nil {
			return fmt.Errorf("无效的 -color: %w", err)
		}
		fill, stroke = opts.color, css.ContrastStroke(c)
	}
	boxes := s.Boxes()
	for i, b := range boxes {
		text := b.Text
		switch {
		case i == 0 && opts.top != "":
			text = opts.top
		case i == len(boxes)-1 && i > 0 && opts.bottom != "":
			text = opts.bottom
		}
		text = binding.Interpolate(text, opts.data)
		s.Patch(b.ID, func(tb *layout.TextBox) {
			tb.Text = text
			if fill != "" {
				tb.Color, tb.StrokeColor = fill, stroke
			}
		})
	}
	return nil
}

// replaceBoxes 用 -boxes 的内容替换当前文本框，id 按顺序重新编号。
func replaceBoxes(s *editor.Session, boxes []layout.TextBox) {
	for _, b := range s.Boxes() {
		s.RemoveBox(b.ID)
	}
	for _, b := range boxes {
		nb := s.AddBox()
		s.Patch(nb.ID, func(tb *layout.TextBox) { *tb = b })
	}
}

func readBoxes(path string) ([]layout.TextBox, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文本框文件 %s: %w", path, err)
	}
	var boxes []layout.TextBox
	if err := json.Unmarshal(raw, &boxes); err != nil {
		return nil, fmt.Errorf("解析文本框 JSON 失败: %w", err)
	}
	return boxes, nil
}

func loadData(v string) (any, error) {
	if path, ok := strings.CutPrefix(v, "@"); ok {
		return binding.LoadData(path)
	}
	var data any
	if err := json.Unmarshal([]byte(v), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
